package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/crsf.go/pkg/framework"
)

// LinkState is the link state event.
type LinkState struct {
	Up bool `protobuf:"varint,1,opt,name=up,proto3" json:"up,omitempty"`
}

// NewMessage implements Message.
func (m *LinkState) NewMessage() fx.Message { return &LinkState{} }

// TypeID implements SerializableMessage.
func (m *LinkState) TypeID() uint32 { return LinkStateEventTypeID }

// Serializable implements SerializableMessage.
func (m *LinkState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *LinkState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkState) Reset() { *m = LinkState{} }

// String implements proto.Message.
func (m *LinkState) String() string { return proto.CompactTextString(m) }

// Channels is the event of decoded channel values in microseconds.
type Channels struct {
	Values []int32 `protobuf:"varint,1,rep,packed,name=values,proto3" json:"values,omitempty"`
}

// NewMessage implements Message.
func (m *Channels) NewMessage() fx.Message { return &Channels{} }

// TypeID implements SerializableMessage.
func (m *Channels) TypeID() uint32 { return ChannelsEventTypeID }

// Serializable implements SerializableMessage.
func (m *Channels) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Channels) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Channels) Reset() { *m = Channels{} }

// String implements proto.Message.
func (m *Channels) String() string { return proto.CompactTextString(m) }

// LinkStats is the link statistics event.
type LinkStats struct {
	UplinkRSSI1   uint32 `protobuf:"varint,1,opt,name=uplink_rssi_1,json=uplinkRssi1,proto3" json:"uplink_rssi_1,omitempty"`
	UplinkRSSI2   uint32 `protobuf:"varint,2,opt,name=uplink_rssi_2,json=uplinkRssi2,proto3" json:"uplink_rssi_2,omitempty"`
	UplinkLQ      uint32 `protobuf:"varint,3,opt,name=uplink_lq,json=uplinkLq,proto3" json:"uplink_lq,omitempty"`
	UplinkSNR     int32  `protobuf:"varint,4,opt,name=uplink_snr,json=uplinkSnr,proto3" json:"uplink_snr,omitempty"`
	ActiveAntenna uint32 `protobuf:"varint,5,opt,name=active_antenna,json=activeAntenna,proto3" json:"active_antenna,omitempty"`
	RFMode        uint32 `protobuf:"varint,6,opt,name=rf_mode,json=rfMode,proto3" json:"rf_mode,omitempty"`
	UplinkTXPower uint32 `protobuf:"varint,7,opt,name=uplink_tx_power,json=uplinkTxPower,proto3" json:"uplink_tx_power,omitempty"`
	DownlinkRSSI  uint32 `protobuf:"varint,8,opt,name=downlink_rssi,json=downlinkRssi,proto3" json:"downlink_rssi,omitempty"`
	DownlinkLQ    uint32 `protobuf:"varint,9,opt,name=downlink_lq,json=downlinkLq,proto3" json:"downlink_lq,omitempty"`
	DownlinkSNR   int32  `protobuf:"varint,10,opt,name=downlink_snr,json=downlinkSnr,proto3" json:"downlink_snr,omitempty"`
	RSSI          int32  `protobuf:"varint,11,opt,name=rssi,proto3" json:"rssi,omitempty"`
}

// NewMessage implements Message.
func (m *LinkStats) NewMessage() fx.Message { return &LinkStats{} }

// TypeID implements SerializableMessage.
func (m *LinkStats) TypeID() uint32 { return LinkStatsEventTypeID }

// Serializable implements SerializableMessage.
func (m *LinkStats) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *LinkStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStats) Reset() { *m = LinkStats{} }

// String implements proto.Message.
func (m *LinkStats) String() string { return proto.CompactTextString(m) }

// Battery is the battery sensor event.
type Battery struct {
	Voltage   uint32 `protobuf:"varint,1,opt,name=voltage,proto3" json:"voltage,omitempty"`
	Current   uint32 `protobuf:"varint,2,opt,name=current,proto3" json:"current,omitempty"`
	Capacity  uint32 `protobuf:"varint,3,opt,name=capacity,proto3" json:"capacity,omitempty"`
	Remaining uint32 `protobuf:"varint,4,opt,name=remaining,proto3" json:"remaining,omitempty"`
}

// NewMessage implements Message.
func (m *Battery) NewMessage() fx.Message { return &Battery{} }

// TypeID implements SerializableMessage.
func (m *Battery) TypeID() uint32 { return BatteryEventTypeID }

// Serializable implements SerializableMessage.
func (m *Battery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Battery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Battery) Reset() { *m = Battery{} }

// String implements proto.Message.
func (m *Battery) String() string { return proto.CompactTextString(m) }

// GPS is the GPS sensor event.
type GPS struct {
	Latitude    int32  `protobuf:"varint,1,opt,name=latitude,proto3" json:"latitude,omitempty"`
	Longitude   int32  `protobuf:"varint,2,opt,name=longitude,proto3" json:"longitude,omitempty"`
	GroundSpeed uint32 `protobuf:"varint,3,opt,name=ground_speed,json=groundSpeed,proto3" json:"ground_speed,omitempty"`
	Heading     uint32 `protobuf:"varint,4,opt,name=heading,proto3" json:"heading,omitempty"`
	Altitude    int32  `protobuf:"varint,5,opt,name=altitude,proto3" json:"altitude,omitempty"`
	Satellites  uint32 `protobuf:"varint,6,opt,name=satellites,proto3" json:"satellites,omitempty"`
}

// NewMessage implements Message.
func (m *GPS) NewMessage() fx.Message { return &GPS{} }

// TypeID implements SerializableMessage.
func (m *GPS) TypeID() uint32 { return GPSEventTypeID }

// Serializable implements SerializableMessage.
func (m *GPS) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *GPS) ProtoMessage() {}

// Reset implements proto.Message.
func (m *GPS) Reset() { *m = GPS{} }

// String implements proto.Message.
func (m *GPS) String() string { return proto.CompactTextString(m) }

// Attitude is the attitude event in degrees.
type Attitude struct {
	Pitch float64 `protobuf:"fixed64,1,opt,name=pitch,proto3" json:"pitch,omitempty"`
	Roll  float64 `protobuf:"fixed64,2,opt,name=roll,proto3" json:"roll,omitempty"`
	Yaw   float64 `protobuf:"fixed64,3,opt,name=yaw,proto3" json:"yaw,omitempty"`
}

// NewMessage implements Message.
func (m *Attitude) NewMessage() fx.Message { return &Attitude{} }

// TypeID implements SerializableMessage.
func (m *Attitude) TypeID() uint32 { return AttitudeEventTypeID }

// Serializable implements SerializableMessage.
func (m *Attitude) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Attitude) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Attitude) Reset() { *m = Attitude{} }

// String implements proto.Message.
func (m *Attitude) String() string { return proto.CompactTextString(m) }

// FlightMode is the flight mode event.
type FlightMode struct {
	Mode string `protobuf:"bytes,1,opt,name=mode,proto3" json:"mode,omitempty"`
}

// NewMessage implements Message.
func (m *FlightMode) NewMessage() fx.Message { return &FlightMode{} }

// TypeID implements SerializableMessage.
func (m *FlightMode) TypeID() uint32 { return FlightModeEventTypeID }

// Serializable implements SerializableMessage.
func (m *FlightMode) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *FlightMode) ProtoMessage() {}

// Reset implements proto.Message.
func (m *FlightMode) Reset() { *m = FlightMode{} }

// String implements proto.Message.
func (m *FlightMode) String() string { return proto.CompactTextString(m) }

// Sensor carries any other telemetry payload undecoded.
type Sensor struct {
	Type    uint32 `protobuf:"varint,1,opt,name=type,proto3" json:"type,omitempty"`
	Payload []byte `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
}

// NewMessage implements Message.
func (m *Sensor) NewMessage() fx.Message { return &Sensor{} }

// TypeID implements SerializableMessage.
func (m *Sensor) TypeID() uint32 { return SensorEventTypeID }

// Serializable implements SerializableMessage.
func (m *Sensor) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Sensor) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Sensor) Reset() { *m = Sensor{} }

// String implements proto.Message.
func (m *Sensor) String() string { return proto.CompactTextString(m) }

// Home is the position relative to the first GPS fix.
type Home struct {
	Distance  float64 `protobuf:"fixed64,1,opt,name=distance,proto3" json:"distance,omitempty"`
	Bearing   float64 `protobuf:"fixed64,2,opt,name=bearing,proto3" json:"bearing,omitempty"`
	Latitude  float64 `protobuf:"fixed64,3,opt,name=latitude,proto3" json:"latitude,omitempty"`
	Longitude float64 `protobuf:"fixed64,4,opt,name=longitude,proto3" json:"longitude,omitempty"`
}

// NewMessage implements Message.
func (m *Home) NewMessage() fx.Message { return &Home{} }

// TypeID implements SerializableMessage.
func (m *Home) TypeID() uint32 { return HomeEventTypeID }

// Serializable implements SerializableMessage.
func (m *Home) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Home) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Home) Reset() { *m = Home{} }

// String implements proto.Message.
func (m *Home) String() string { return proto.CompactTextString(m) }

// Passthrough asks the link to enter or leave passthrough mode.
type Passthrough struct {
	Enable bool   `protobuf:"varint,1,opt,name=enable,proto3" json:"enable,omitempty"`
	Baud   uint32 `protobuf:"varint,2,opt,name=baud,proto3" json:"baud,omitempty"`
}

// NewMessage implements Message.
func (m *Passthrough) NewMessage() fx.Message { return &Passthrough{} }

// TypeID implements SerializableMessage.
func (m *Passthrough) TypeID() uint32 { return PassthroughTypeID }

// Serializable implements SerializableMessage.
func (m *Passthrough) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Passthrough) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Passthrough) Reset() { *m = Passthrough{} }

// String implements proto.Message.
func (m *Passthrough) String() string { return proto.CompactTextString(m) }

// Send asks the link to send a frame.
type Send struct {
	Address   uint32 `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
	Type      uint32 `protobuf:"varint,2,opt,name=type,proto3" json:"type,omitempty"`
	Payload   []byte `protobuf:"bytes,3,opt,name=payload,proto3" json:"payload,omitempty"`
	Unchecked bool   `protobuf:"varint,4,opt,name=unchecked,proto3" json:"unchecked,omitempty"`
}

// NewMessage implements Message.
func (m *Send) NewMessage() fx.Message { return &Send{} }

// TypeID implements SerializableMessage.
func (m *Send) TypeID() uint32 { return SendTypeID }

// Serializable implements SerializableMessage.
func (m *Send) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Send) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Send) Reset() { *m = Send{} }

// String implements proto.Message.
func (m *Send) String() string { return proto.CompactTextString(m) }

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic reply of a failed command.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupLink    uint32 = 0x00010000
	GroupSensor  uint32 = 0x00020000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID       uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID      uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	PassthroughTypeID     uint32 = GroupLink | 0x0000
	SendTypeID            uint32 = GroupLink | 0x0001
	LinkStateEventTypeID  uint32 = GroupLink | TypeIDKindEvent | 0x0000
	ChannelsEventTypeID   uint32 = GroupLink | TypeIDKindEvent | 0x0001
	LinkStatsEventTypeID  uint32 = GroupLink | TypeIDKindEvent | 0x0002
	BatteryEventTypeID    uint32 = GroupSensor | TypeIDKindEvent | 0x0000
	GPSEventTypeID        uint32 = GroupSensor | TypeIDKindEvent | 0x0001
	AttitudeEventTypeID   uint32 = GroupSensor | TypeIDKindEvent | 0x0002
	FlightModeEventTypeID uint32 = GroupSensor | TypeIDKindEvent | 0x0003
	SensorEventTypeID     uint32 = GroupSensor | TypeIDKindEvent | 0x0004
	HomeEventTypeID       uint32 = GroupSensor | TypeIDKindEvent | 0x0005
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]SerializableMessage{

	LinkStateEventTypeID:  (*LinkState)(nil),
	ChannelsEventTypeID:   (*Channels)(nil),
	LinkStatsEventTypeID:  (*LinkStats)(nil),
	BatteryEventTypeID:    (*Battery)(nil),
	GPSEventTypeID:        (*GPS)(nil),
	AttitudeEventTypeID:   (*Attitude)(nil),
	FlightModeEventTypeID: (*FlightMode)(nil),
	SensorEventTypeID:     (*Sensor)(nil),
	HomeEventTypeID:       (*Home)(nil),
	PassthroughTypeID:     (*Passthrough)(nil),
	SendTypeID:            (*Send)(nil),
	CommandOKTypeID:       (*CommandOK)(nil),
	CommandErrTypeID:      (*CommandErr)(nil),
}
