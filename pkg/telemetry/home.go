package telemetry

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371008.8

// Position is a GPS position relative to home.
type Position struct {
	Home    s2.LatLng
	Current s2.LatLng
	// Distance is the great circle distance in meters.
	Distance float64
	// Bearing is the initial course from home in degrees, [0, 360).
	Bearing float64
	// Altitude is the height above home in meters.
	Altitude int
}

// HomeTracker takes the first GPS fix as home and tracks the position
// relative to it.
type HomeTracker struct {
	// MinSatellites ignores fixes with fewer satellites.
	MinSatellites uint8

	lock    sync.Mutex
	home    *s2.LatLng
	homeAlt int
	pos     Position
}

// Update updates the position, it returns false if gps is not a usable
// fix.
func (h *HomeTracker) Update(gps *crsf.GPS) (Position, bool) {
	if gps.Satellites < h.MinSatellites || (gps.Latitude == 0 && gps.Longitude == 0) {
		return Position{}, false
	}
	lat, lng := gps.LatLng()
	cur := s2.LatLngFromDegrees(lat, lng)

	h.lock.Lock()
	defer h.lock.Unlock()
	if h.home == nil {
		h.home, h.homeAlt = &cur, gps.AltitudeMeters()
	}
	h.pos = Position{
		Home:     *h.home,
		Current:  cur,
		Distance: h.home.Distance(cur).Radians() * EarthRadius,
		Bearing:  bearing(*h.home, cur).Degrees(),
		Altitude: gps.AltitudeMeters() - h.homeAlt,
	}
	return h.pos, true
}

// Position returns the last position, false before home is set.
func (h *HomeTracker) Position() (Position, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.pos, h.home != nil
}

// Reset forgets home, the next fix becomes the new home.
func (h *HomeTracker) Reset() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.home, h.pos = nil, Position{}
}

// HandleTelemetry implements link.TelemetryHandler.
func (h *HomeTracker) HandleTelemetry(ctx context.Context, p crsf.Payload) {
	if gps, ok := p.(*crsf.GPS); ok {
		h.Update(gps)
	}
}

func bearing(from, to s2.LatLng) s1.Angle {
	lat1, lat2 := from.Lat.Radians(), to.Lat.Radians()
	dLng := (to.Lng - from.Lng).Radians()
	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	rad := math.Atan2(y, x)
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return s1.Angle(rad)
}
