// Package sim simulates the peers of a link for testing without radios.
//
// Handset plays the transmitter side and sweeps the sticks. Craft plays the
// flight controller side: it flies on the received channels and reports
// GPS, attitude and battery telemetry.
package sim
