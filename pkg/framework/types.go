package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Message is consumed by controllers inside the loop.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}

// Controller is invoked once per loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// ControlContext provides the context of current iteration.
type ControlContext interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is the time the iteration started.
	Time() time.Time
	// Messages retrieves all messages collected when the iteration starts.
	Messages() MessageStore

	LoopControl
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 4

// Priority levels, controllers run from top to bottom.
const (
	// PrLvSense runs link pumps.
	PrLvSense int = iota
	// PrLvControl runs schedulers acting on pumped state.
	PrLvControl
	// PrLvOutput runs sinks.
	PrLvOutput
	// PrLvIdle runs housekeeping.
	PrLvIdle
)

// LoopControl exposes access to the loop from other goroutines.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext runs the next iteration immediately.
	TriggerNext()
}

// MessageStore provides access to the messages of an iteration.
type MessageStore interface {
	ProcessMessages(MessageProcessor)
}

// MessageProcessor is used by MessageStore to process messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for current message.
type MessageProcessingContext interface {
	// CurrentMessage gets the current message being processed.
	CurrentMessage() Message
	// MessageTaken removes the message from store.
	MessageTaken()
}
