package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes audit events to the journal from a fixed set of workers,
// sharding by entity id so events for one entity land in order.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	journal ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, journal ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		journal: journal,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands an event to the worker responsible for its entity. A full
// worker channel drops the event rather than block the calling operation.
func (d *Dispatcher) Publish(event domain.AuditEvent) {
	select {
	case d.workers[d.shardIndex(event.EntityID)] <- event:
	default:
		d.log.Warn().
			Str("entity_id", event.EntityID).
			Str("action", event.Action).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an entity id deterministically to a worker index.
func (d *Dispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.journal.InsertEvent(ctx, &event); err != nil {
				d.log.Error().Err(err).
					Str("entity_id", event.EntityID).
					Str("action", event.Action).
					Int("worker_id", id).
					Msg("audit journal write failed")
			}
		}
	}
}
