package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// EventSink consumes provider auth events; in practice the reconciler.
type EventSink interface {
	HandleEvent(ev domain.AuthEvent)
}

// Dispatcher routes provider auth events to a fixed set of workers using
// consistent hashing on the user ID, so each user's events are processed in
// arrival order while different users proceed in parallel.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	sink    EventSink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink EventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its user.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(ev domain.AuthEvent) {
	d.workers[d.shardIndex(eventUserID(ev))] <- ev
}

// EnqueueBatch enqueues multiple events preserving per-user ordering.
func (d *Dispatcher) EnqueueBatch(events []domain.AuthEvent) {
	for _, ev := range events {
		d.Enqueue(ev)
	}
}

// Pump forwards events from a provider subscription into the dispatcher until
// ctx is cancelled or the channel closes.
func (d *Dispatcher) Pump(ctx context.Context, events <-chan domain.AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Enqueue(ev)
		}
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			d.log.Debug().
				Str("type", string(ev.Type)).
				Str("user_id", eventUserID(ev)).
				Int("worker_id", id).
				Msg("auth event dispatched")
			d.sink.HandleEvent(ev)
		}
	}
}

func eventUserID(ev domain.AuthEvent) string {
	if ev.UserID != "" {
		return ev.UserID
	}
	if ev.Session != nil {
		return ev.Session.UserID
	}
	return ""
}
