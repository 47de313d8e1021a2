package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/api/metrics"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes role-sync jobs to a fixed set of workers using
// consistent hashing on the chat account id, so the calls for one member
// run in the order their state changed.
type Dispatcher struct {
	workers []chan ports.RoleSyncJob
	roles   ports.RoleSyncService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, roles ports.RoleSyncService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.RoleSyncJob, numWorkers),
		roles:   roles,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.RoleSyncJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker responsible for its chat account. A full
// worker channel drops the job; the next state change or a manual role sync
// converges the roles again.
func (d *Dispatcher) Enqueue(job ports.RoleSyncJob) {
	idx := d.shardIndex(job.ExternalID)
	select {
	case d.workers[idx] <- job:
		metrics.RoleSyncQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Str("user_id", job.UserID).
			Int("worker_id", idx).
			Msg("role sync queue full, dropping job")
	}
}

// shardIndex maps a chat account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(externalID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(externalID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.RoleSyncJob) {
	depth := metrics.RoleSyncQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.roles.SyncMembershipRole(ctx, job.ExternalID, job.Status); err != nil {
				metrics.RoleSyncTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("user_id", job.UserID).
					Str("status", string(job.Status)).
					Int("worker_id", id).
					Msg("role sync failed")
				continue
			}
			metrics.RoleSyncTotal.WithLabelValues("ok").Inc()
		}
	}
}
