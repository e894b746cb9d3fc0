package audit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Dispatcher forwards events to a sink from a single background
// goroutine. Emit never blocks: a full buffer drops the event and counts
// it, so audit pressure cannot stall an authentication path.
//
// A nil Dispatcher is valid and discards everything; the engine holds nil
// when auditing is disabled, so emit sites never branch on configuration.
type Dispatcher struct {
	sink    Sink
	ch      chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

// NewDispatcher starts the delivery goroutine. A nil sink delivers into a
// [NoOpSink]; drop accounting still works.
func NewDispatcher(sink Sink, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink: sink,
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(event)
		case <-d.done:
			// Deliver whatever was buffered before shutdown.
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(event)
				default:
					return
				}
			}
		}
	}
}

// Emit enqueues an event for delivery, stamping it with the wall clock
// when the producer left Timestamp zero.
func (d *Dispatcher) Emit(event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case d.ch <- event:
	default:
		d.dropped.Add(1)
	}
}

// Close stops intake, delivers the backlog, and waits for the delivery
// goroutine to exit. Events emitted after Close are discarded.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
