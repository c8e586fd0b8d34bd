package crsf

import "fmt"

// Address identifies a device on the link.
type Address byte

// Device addresses.
const (
	AddrBroadcast        Address = 0x00
	AddrUSB              Address = 0x10
	AddrTBSCorePNPPro    Address = 0x80
	AddrReserved1        Address = 0x8a
	AddrCurrentSensor    Address = 0xc0
	AddrGPS              Address = 0xc2
	AddrTBSBlackbox      Address = 0xc4
	AddrFlightController Address = 0xc8
	AddrReserved2        Address = 0xca
	AddrRaceTag          Address = 0xcc
	AddrRadioTransmitter Address = 0xea
	AddrReceiver         Address = 0xec
	AddrTransmitter      Address = 0xee
)

// SyncByte is the address byte the flight controller side expects.
const SyncByte = byte(AddrFlightController)

var addressNames = map[Address]string{
	AddrBroadcast:        "broadcast",
	AddrUSB:              "usb",
	AddrTBSCorePNPPro:    "tbs-core-pnp-pro",
	AddrReserved1:        "reserved1",
	AddrCurrentSensor:    "current-sensor",
	AddrGPS:              "gps",
	AddrTBSBlackbox:      "tbs-blackbox",
	AddrFlightController: "flight-controller",
	AddrReserved2:        "reserved2",
	AddrRaceTag:          "race-tag",
	AddrRadioTransmitter: "radio-transmitter",
	AddrReceiver:         "receiver",
	AddrTransmitter:      "transmitter",
}

func (a Address) String() string {
	if name, ok := addressNames[a]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", byte(a))
}

// ParseAddress accepts a device name or a numeric value.
func ParseAddress(s string) (Address, error) {
	for addr, name := range addressNames {
		if name == s {
			return addr, nil
		}
	}
	var v uint
	if _, err := fmt.Sscan(s, &v); err != nil || v > 0xff {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return Address(v), nil
}

// FrameType identifies the payload layout.
type FrameType byte

// Frame types.
const (
	TypeGPS            FrameType = 0x02
	TypeVario          FrameType = 0x07
	TypeBattery        FrameType = 0x08
	TypeBaroAltitude   FrameType = 0x09
	TypeAirspeed       FrameType = 0x0a
	TypeRPM            FrameType = 0x0c
	TypeTemperature    FrameType = 0x0d
	TypeCells          FrameType = 0x0e
	TypeOpenTXSync     FrameType = 0x10
	TypeLinkStatistics FrameType = 0x14
	TypeChannelsPacked FrameType = 0x16
	TypeAttitude       FrameType = 0x1e
	TypeFlightMode     FrameType = 0x21
	TypeDevicePing     FrameType = 0x28
	TypeDeviceInfo     FrameType = 0x29
	TypeParamEntry     FrameType = 0x2b
	TypeParamRead      FrameType = 0x2c
	TypeParamWrite     FrameType = 0x2d
	TypeCommand        FrameType = 0x32
	TypeRadioID        FrameType = 0x3a
	TypeMSPRequest     FrameType = 0x7a
	TypeMSPResponse    FrameType = 0x7b
	TypeMSPWrite       FrameType = 0x7c
)

var frameTypeNames = map[FrameType]string{
	TypeGPS:            "gps",
	TypeVario:          "vario",
	TypeBattery:        "battery",
	TypeBaroAltitude:   "baro",
	TypeAirspeed:       "airspeed",
	TypeRPM:            "rpm",
	TypeTemperature:    "temp",
	TypeCells:          "cells",
	TypeOpenTXSync:     "opentx-sync",
	TypeLinkStatistics: "linkstats",
	TypeChannelsPacked: "channels",
	TypeAttitude:       "attitude",
	TypeFlightMode:     "flightmode",
	TypeDevicePing:     "device-ping",
	TypeDeviceInfo:     "device-info",
	TypeParamEntry:     "param-entry",
	TypeParamRead:      "param-read",
	TypeParamWrite:     "param-write",
	TypeCommand:        "command",
	TypeRadioID:        "radio-id",
	TypeMSPRequest:     "msp-req",
	TypeMSPResponse:    "msp-resp",
	TypeMSPWrite:       "msp-write",
}

func (t FrameType) String() string {
	if name, ok := frameTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", byte(t))
}

// ParseFrameType parses a frame type name or number.
func ParseFrameType(s string) (FrameType, error) {
	for t, name := range frameTypeNames {
		if name == s {
			return t, nil
		}
	}
	var v uint
	if _, err := fmt.Sscan(s, &v); err != nil || v > 0xff {
		return 0, fmt.Errorf("invalid frame type %q", s)
	}
	return FrameType(v), nil
}
