// Package output maps channels to servo outputs and applies failsafe
// actions when the link goes down.
package output

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robotalks/crsf.go/pkg/crsf"
	"github.com/robotalks/crsf.go/pkg/link"
)

// NumOutputs is the default number of outputs.
const NumOutputs = 8

// Failsafe is the action of an output when the link goes down. Values
// other than FailsafeNoPulses and FailsafeHold are microseconds.
type Failsafe int

// Failsafe actions.
const (
	FailsafeNoPulses Failsafe = 0
	FailsafeHold     Failsafe = 1
)

// Defaults.
var (
	DefaultMap      = []int{1, 2, 3, 4, 6, 7, 8, 12}
	DefaultFailsafe = []Failsafe{1500, 1500, 988, 1500, FailsafeHold, FailsafeHold, FailsafeHold, FailsafeNoPulses}
)

// Outputs holds the servo output values in microseconds, 0 means no
// pulses. Outputs stay off until the first channels arrive.
type Outputs struct {
	// Map is the 1-based input channel of each output, negative inverts
	// the channel around 1500us.
	Map      []int
	Failsafe []Failsafe

	lock   sync.RWMutex
	values []int
}

// New creates Outputs. fs may be shorter than m, missing actions hold.
func New(m []int, fs []Failsafe) *Outputs {
	return &Outputs{Map: m, Failsafe: fs, values: make([]int, len(m))}
}

// Values returns a copy of the output values.
func (o *Outputs) Values() []int {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return append([]int(nil), o.values...)
}

// HandleChannels implements link.ChannelsHandler.
func (o *Outputs) HandleChannels(ctx context.Context, cs crsf.ChannelSet) {
	o.lock.Lock()
	defer o.lock.Unlock()
	for n, ch := range o.Map {
		switch {
		case ch > 0 && ch <= crsf.NumChannels:
			o.values[n] = cs[ch-1]
		case ch < 0 && -ch <= crsf.NumChannels:
			o.values[n] = 3000 - cs[-ch-1]
		}
	}
}

// LinkStateChanged implements link.LinkNotifier.
func (o *Outputs) LinkStateChanged(ctx context.Context, state link.LinkState) {
	if state != link.LinkDown {
		return
	}
	o.lock.Lock()
	defer o.lock.Unlock()
	for n := range o.values {
		if n >= len(o.Failsafe) {
			continue
		}
		switch fs := o.Failsafe[n]; fs {
		case FailsafeHold:
		case FailsafeNoPulses:
			o.values[n] = 0
		default:
			o.values[n] = int(fs)
		}
	}
}

// ParseMap parses a comma separated channel map like "1,2,-3".
func ParseMap(s string) ([]int, error) {
	var m []int
	for _, item := range strings.Split(s, ",") {
		ch, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("invalid channel %q", item)
		}
		if ch == 0 || ch > crsf.NumChannels || ch < -crsf.NumChannels {
			return nil, fmt.Errorf("channel out of range: %d", ch)
		}
		m = append(m, ch)
	}
	return m, nil
}

// ParseFailsafe parses comma separated failsafe actions, each of "hold",
// "nopulses" or microseconds.
func ParseFailsafe(s string) ([]Failsafe, error) {
	var fs []Failsafe
	for _, item := range strings.Split(s, ",") {
		switch item = strings.TrimSpace(item); item {
		case "hold":
			fs = append(fs, FailsafeHold)
		case "nopulses":
			fs = append(fs, FailsafeNoPulses)
		default:
			us, err := strconv.Atoi(item)
			if err != nil || us < 500 || us > 2500 {
				return nil, fmt.Errorf("invalid failsafe %q", item)
			}
			fs = append(fs, Failsafe(us))
		}
	}
	return fs, nil
}

// String implements fmt.Stringer.
func (f Failsafe) String() string {
	switch f {
	case FailsafeHold:
		return "hold"
	case FailsafeNoPulses:
		return "nopulses"
	}
	return strconv.Itoa(int(f))
}
