package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls asynchronous audit dispatching.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher delivers audit events to a sink on a background goroutine.
// The event channel is never closed; shutdown is signaled through done so
// Emit can race with Close without panicking.
type Dispatcher struct {
	sink    Sink
	events  chan Event
	done    chan struct{}
	drop    bool
	dropped atomic.Uint64
	closed  atomic.Bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher for the given sink. A nil sink or a
// disabled config yields a nil dispatcher, which is safe to use.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled || sink == nil {
		return nil
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 256
	}

	d := &Dispatcher{
		sink:   sink,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		drop:   cfg.DropIfFull,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case event := <-d.events:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit queues an event for delivery. When DropIfFull is set and the buffer
// is full the event is counted as dropped instead of blocking the caller.
// Emit after Close is a no-op.
func (d *Dispatcher) Emit(event Event) {
	if d == nil || d.closed.Load() {
		return
	}

	if d.drop {
		select {
		case d.events <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-d.done:
	}
}

// Dropped reports how many events were discarded due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Close drains queued events and stops the dispatcher.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}
