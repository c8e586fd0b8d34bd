package telemetry

import (
	"time"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

// Battery voltage sampling defaults.
const (
	DefaultBatteryInterval = 500 * time.Millisecond
	DefaultBatterySmooth   = 5
	// ADCMax is the full scale of a 12 bit ADC.
	ADCMax = 1<<12 - 1
)

// VoltageDivider converts ADC readings across a resistor divider into
// decivolts.
type VoltageDivider struct {
	// R1 is the upper resistor, R2 the one to ground.
	R1, R2 int
	// RefCentivolts is the ADC reference, 330 for 3.3V.
	RefCentivolts int
	// Scale calibrates the result in percent, 0 means 100.
	Scale int
}

// Decivolts converts an ADC reading.
func (d VoltageDivider) Decivolts(adc int) int {
	ref := d.RefCentivolts
	if ref == 0 {
		ref = 330
	}
	v := ref * adc * (d.R1 + d.R2) / d.R2 / ADCMax / 10
	if d.Scale != 0 {
		v = v * d.Scale / 100
	}
	return v
}

// BatteryMonitor smooths voltage samples and queues a battery payload
// once for every complete filter cycle.
type BatteryMonitor struct {
	Scheduler *Scheduler
	Divider   VoltageDivider
	// Interval is the time of a complete filter cycle.
	Interval time.Duration

	filter     *MedianAvg
	lastSample time.Time
	voltage    int
}

// NewBatteryMonitor creates a BatteryMonitor.
func NewBatteryMonitor(s *Scheduler, d VoltageDivider) *BatteryMonitor {
	return &BatteryMonitor{
		Scheduler: s,
		Divider:   d,
		Interval:  DefaultBatteryInterval,
		filter:    NewMedianAvg(DefaultBatterySmooth),
	}
}

// Due tells if the next sample should be taken.
func (m *BatteryMonitor) Due(now time.Time) bool {
	return m.lastSample.IsZero() || now.Sub(m.lastSample) >= m.Interval/DefaultBatterySmooth
}

// Sample adds an ADC reading. It returns true when a new voltage was
// queued for sending.
func (m *BatteryMonitor) Sample(now time.Time, adc int) bool {
	m.lastSample = now
	if m.filter.Add(adc) != 0 {
		return false
	}
	m.voltage = m.Divider.Decivolts(m.filter.Value())
	if m.Scheduler != nil {
		m.Scheduler.Set(now, &crsf.Battery{Voltage: uint16(m.voltage)})
	}
	return true
}

// Decivolts returns the last smoothed voltage.
func (m *BatteryMonitor) Decivolts() int {
	return m.voltage
}
