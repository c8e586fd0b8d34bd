package telemetry

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
)

// DefaultInterval is the default interval between telemetry frames.
const DefaultInterval = 200 * time.Millisecond

// Sender sends telemetry payloads.
type Sender interface {
	SendTelemetry(crsf.Payload) error
}

// Scheduler sends telemetry round-robin, one frame per interval. There is
// one slot per frame type and a newer payload replaces the queued one.
// Queued payloads are sent repeatedly until they expire.
type Scheduler struct {
	// Sender is used by the loop controller, usually the engine.
	Sender   Sender
	Interval time.Duration
	// MaxAge drops payloads not updated for this long, 0 to keep them.
	MaxAge time.Duration

	lock     sync.Mutex
	slots    []*slot
	next     int
	lastSent time.Time
}

type slot struct {
	payload crsf.Payload
	updated time.Time
}

// NewScheduler creates a Scheduler.
func NewScheduler(sender Sender, interval time.Duration) *Scheduler {
	return &Scheduler{Sender: sender, Interval: interval}
}

// SetMsg queues a payload from outside of the loop.
type SetMsg struct {
	Payload crsf.Payload
}

// NewMessage implements Message.
func (m *SetMsg) NewMessage() fx.Message { return &SetMsg{} }

// Set queues p, replacing the payload of the same frame type. It's safe
// to call from any goroutine.
func (s *Scheduler) Set(now time.Time, p crsf.Payload) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, sl := range s.slots {
		if sl.payload.FrameType() == p.FrameType() {
			sl.payload, sl.updated = p, now
			return
		}
	}
	s.slots = append(s.slots, &slot{payload: p, updated: now})
}

// Remove removes the slot of a frame type.
func (s *Scheduler) Remove(t crsf.FrameType) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.remove(func(sl *slot) bool { return sl.payload.FrameType() == t })
}

// Len returns the number of queued payloads.
func (s *Scheduler) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.slots)
}

// Poll sends the next payload when the interval elapsed.
func (s *Scheduler) Poll(now time.Time, sender Sender) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if !s.lastSent.IsZero() && now.Sub(s.lastSent) < interval {
		return nil
	}
	if s.MaxAge > 0 {
		s.remove(func(sl *slot) bool { return now.Sub(sl.updated) > s.MaxAge })
	}
	if len(s.slots) == 0 {
		return nil
	}
	if s.next >= len(s.slots) {
		s.next = 0
	}
	p := s.slots[s.next].payload
	err := sender.SendTelemetry(p)
	if err != nil && !link.IsSuppressed(err) {
		return err
	}
	if err != nil {
		// try the same slot next time
		glog.V(3).Infof("telemetry %s held: %v", p.FrameType(), err)
		return nil
	}
	s.lastSent = now
	s.next++
	return nil
}

// AddToLoop implements LoopAdder.
func (s *Scheduler) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, s)
}

// Control implements Controller.
func (s *Scheduler) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if msg, ok := mctx.CurrentMessage().(*SetMsg); ok {
			mctx.MessageTaken()
			s.Set(cc.Time(), msg.Payload)
		}
	}))
	if s.Sender == nil {
		return nil
	}
	return s.Poll(cc.Time(), s.Sender)
}

func (s *Scheduler) remove(match func(*slot) bool) {
	slots := s.slots[:0]
	for n, sl := range s.slots {
		if match(sl) {
			if n < s.next {
				s.next--
			}
			continue
		}
		slots = append(slots, sl)
	}
	s.slots = slots
}
