package joystick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/crsf.go/pkg/crsf"
	"github.com/robotalks/crsf.go/pkg/joystick/device"
)

// Mapping assigns joystick axes and buttons to 1-based channels. A
// negative axis channel inverts the axis.
type Mapping struct {
	Axes    map[int]int
	Buttons map[int]int
}

// DefaultMapping fits a common gamepad in mode 2: left stick throttle and
// yaw, right stick roll and pitch, four buttons as switches.
func DefaultMapping() Mapping {
	return Mapping{
		Axes:    map[int]int{0: 4, 1: -3, 3: 1, 4: -2},
		Buttons: map[int]int{0: 5, 1: 6, 2: 7, 3: 8},
	}
}

// ParseMapping parses "a0:4,a1:-3,b0:5" items.
func ParseMapping(s string) (m Mapping, err error) {
	m.Axes, m.Buttons = make(map[int]int), make(map[int]int)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		src, dst, ok := strings.Cut(item, ":")
		if !ok || len(src) < 2 {
			return m, fmt.Errorf("invalid mapping %q", item)
		}
		index, err := strconv.Atoi(src[1:])
		if err != nil || index < 0 {
			return m, fmt.Errorf("invalid mapping %q", item)
		}
		ch, err := strconv.Atoi(dst)
		if err != nil || ch == 0 || ch > crsf.NumChannels || ch < -crsf.NumChannels {
			return m, fmt.Errorf("invalid channel in %q", item)
		}
		switch src[0] {
		case 'a':
			m.Axes[index] = ch
		case 'b':
			if ch < 0 {
				return m, fmt.Errorf("button can't invert in %q", item)
			}
			m.Buttons[index] = ch
		default:
			return m, fmt.Errorf("invalid mapping %q", item)
		}
	}
	return m, nil
}

// AxisMicros converts an axis value to microseconds.
func AxisMicros(v int) int {
	if v > device.AxisMax {
		v = device.AxisMax
	} else if v < -device.AxisMax {
		v = -device.AxisMax
	}
	return 1500 + (v*500+device.AxisMax/2*sign(v))/device.AxisMax
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

// Apply converts ev to a channel value. It returns false if ev isn't
// mapped.
func (m Mapping) Apply(ev device.Event) (ch, us int, ok bool) {
	switch {
	case ev.IsAxis():
		if ch, ok = m.Axes[int(ev.Number)]; ok {
			v := int(ev.Value)
			if ch < 0 {
				ch, v = -ch, -v
			}
			us = AxisMicros(v)
		}
	case ev.IsButton():
		if ch, ok = m.Buttons[int(ev.Number)]; ok {
			us = 1000
			if ev.Pressed() {
				us = 2000
			}
		}
	}
	return
}
