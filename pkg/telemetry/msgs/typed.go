package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/crsf.go/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Message Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed wraps a message with type information.
type Typed struct {
	TypeID  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Typed) Reset() { *m = Typed{} }

// String implements proto.Message.
func (m *Typed) String() string { return proto.CompactTextString(m) }

// IsEvent tells if the message is an event.
func (m *Typed) IsEvent() bool {
	return m.TypeID&TypeIDMaskKind == TypeIDKindEvent
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates the command is unsupported.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
	String() string
}

// TypedFrom creates a Typed from a serializable message.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeID: s.TypeID(), Message: data}, nil
}

// DecodeTyped decodes the envelope.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// Decode decodes the envelope content into actual message.
func (m *Typed) Decode() (fx.Message, error) {
	msgType, ok := MessageTypes[m.TypeID]
	if !ok {
		return nil, &ErrUnknownType{TypeID: m.TypeID}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(m.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Marshal encodes msg with its envelope.
func Marshal(msg fx.Message) ([]byte, error) {
	typed, err := TypedFrom(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(typed)
}

// Unmarshal decodes an envelope and its message.
func Unmarshal(data []byte) (fx.Message, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}
