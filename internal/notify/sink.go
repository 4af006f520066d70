package notify

import (
	"context"
	"sync"

	"github.com/smartlime/spam-restrictor-bot/internal/crash"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
)

// Sink receives lifecycle events. Publish is best-effort and never reports failure
// back to the caller; implementations log their own errors.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) {}

// LogSink writes a log line per event.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, e Event) {
	if e.Type.IsFailure() {
		logger.Warningf("Lifecycle event %s: member=%s err=%v", e.Type, e.Member, e.Err)
		return
	}
	logger.Infof("Lifecycle event %s: member=%s", e.Type, e.Member)
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, e Event) {
	for _, s := range m {
		s.Publish(ctx, e)
	}
}

// AsyncSink hands events to a background goroutine so slow delivery never holds up the caller.
// Events are dropped with a warning when the queue is full.
type AsyncSink struct {
	next   Sink
	queue  chan Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewAsyncSink starts the delivery goroutine.
func NewAsyncSink(next Sink, size int) *AsyncSink {
	a := &AsyncSink{
		next:  next,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}
	crash.SafeGoroutine("notify-dispatch", a.run)
	return a
}

func (a *AsyncSink) run() {
	defer close(a.done)
	for e := range a.queue {
		a.deliver(e)
	}
}

func (a *AsyncSink) deliver(e Event) {
	defer crash.RecoverWithStack("notify-deliver")
	a.next.Publish(context.Background(), e)
}

func (a *AsyncSink) Publish(_ context.Context, e Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		logger.Warningf("Dropping %s event for %s: dispatcher closed", e.Type, e.Member)
		return
	}

	select {
	case a.queue <- e:
	default:
		logger.Warningf("Notification queue full, dropping %s event for %s", e.Type, e.Member)
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}
