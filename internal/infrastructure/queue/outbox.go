package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/pkg/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
)

// Outbox delivers mail jobs on a fixed set of workers. Jobs are sharded by
// recipient, so emails to one address are sent in the order they were queued.
type Outbox struct {
	workers []chan ports.MailJob
	emails  ports.EmailService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewOutbox creates an Outbox with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewOutbox(numWorkers int, emails ports.EmailService, log zerolog.Logger) *Outbox {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	o := &Outbox{
		workers: make([]chan ports.MailJob, numWorkers),
		emails:  emails,
		log:     log,
	}
	for i := range o.workers {
		o.workers[i] = make(chan ports.MailJob, channelBuffer)
	}
	return o
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (o *Outbox) Start(ctx context.Context) {
	for i, ch := range o.workers {
		o.wg.Add(1)
		go o.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (o *Outbox) Wait() {
	o.wg.Wait()
}

// Enqueue hands job to the worker responsible for its recipient. It never
// blocks: when that worker's buffer is full the job is dropped and logged.
func (o *Outbox) Enqueue(job ports.MailJob) {
	idx := o.shardIndex(job.To)
	select {
	case o.workers[idx] <- job:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		o.log.Error().Str("kind", job.Kind).Str("to", job.To).Int("worker_id", idx).Msg("mail queue full, job dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (o *Outbox) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(to)))
	return int(h.Sum32() % uint32(len(o.workers)))
}

func (o *Outbox) runWorker(ctx context.Context, id int, ch <-chan ports.MailJob) {
	defer o.wg.Done()
	depth := metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-ch:
			depth.Dec()
			o.deliver(ctx, id, job)
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, id int, job ports.MailJob) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := o.emails.SendUserEmail(ctx, job.Kind, job.Vars, job.To); err != nil {
		o.log.Error().Err(err).
			Str("kind", job.Kind).
			Str("to", job.To).
			Int("worker_id", id).
			Msg("mail delivery failed")
	}
}
