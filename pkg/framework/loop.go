package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the default iteration interval. It's short enough
// for a pump to keep up with a 420k baud line and to detect failsafe.
const DefaultInterval = 5 * time.Millisecond

// Loop runs controllers periodically in priority order.
type Loop struct {
	Interval time.Duration
	// Now provides iteration time, time.Now if nil.
	Now func() time.Time

	controllers [PriorityLevels][]Controller
	runners     []Runnable

	messages []Message
	lock     sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	*Loop
	ctx      context.Context
	time     time.Time
	messages []Message
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets LoopControl from the context passed to runners.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level. Controllers
// also implementing Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	runner.Go(l.runners...)

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-runner.Context.Done():
			// a failed runner stops the loop
			if err := runner.Wait(); err != nil {
				return err
			}
			return context.Canceled
		case <-ticker.C:
			l.RunIteration(ctx)
		case <-l.wakeUpCh:
			l.RunIteration(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages = append(l.messages, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// RunIteration runs all controllers once. Run calls it on every tick.
func (l *Loop) RunIteration(ctx context.Context) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	iter := &loopIteration{Loop: l, ctx: ctx, time: now()}
	l.lock.Lock()
	iter.messages, l.messages = l.messages, nil
	l.lock.Unlock()
	for _, ctls := range l.controllers {
		for _, ctl := range ctls {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
	if len(iter.messages) > 0 {
		glog.V(3).Infof("%d messages not taken", len(iter.messages))
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Messages() MessageStore {
	return t
}

type messageContext struct {
	msg   Message
	taken bool
}

func (c *messageContext) CurrentMessage() Message { return c.msg }
func (c *messageContext) MessageTaken()           { c.taken = true }

func (t *loopIteration) ProcessMessages(proc MessageProcessor) {
	remains := t.messages[:0]
	for _, msg := range t.messages {
		mctx := &messageContext{msg: msg}
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains = append(remains, msg)
		}
	}
	t.messages = remains
}
