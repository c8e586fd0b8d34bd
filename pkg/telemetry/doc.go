// Package telemetry schedules outgoing telemetry and derives values from
// incoming telemetry.
package telemetry
