package core

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/pkg/errors"
)

// task is one side effect decided by the engine. Durable tasks are retried
// with exponential backoff; the rest get a single attempt.
type task struct {
	name    string
	durable bool
	fields  []logger.Field
	run     func(ctx context.Context) error
}

// dispatcher runs side effects off the matching path. Tasks for one key land
// on the same worker and run in submission order.
type dispatcher struct {
	log        *logger.Logger
	queues     []chan task
	maxRetries int
	backoff    time.Duration
	onFailure  func(name string, err error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func newDispatcher(log *logger.Logger, workers, queueSize, maxRetries int, backoff time.Duration, onFailure func(string, error)) *dispatcher {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &dispatcher{
		log:        log,
		queues:     make([]chan task, workers),
		maxRetries: maxRetries,
		backoff:    backoff,
		onFailure:  onFailure,
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := range d.queues {
		d.queues[i] = make(chan task, queueSize)
		d.wg.Add(1)
		go d.worker(d.queues[i])
	}
	return d
}

func (d *dispatcher) shard(key string) chan task {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return d.queues[h.Sum32()%uint32(len(d.queues))]
}

// submit queues tasks for key. It blocks while the shard queue is full and
// reports false once the dispatcher is closed. Durable tasks refused after
// close are escalated like tasks that ran out of retries.
func (d *dispatcher) submit(key string, tasks ...task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		for _, t := range tasks {
			fields := with(t.fields, logger.NewField("task", t.name))
			if t.durable {
				d.escalate(t, errors.Errorf("%s dropped, dispatcher closed", t.name), fields)
				continue
			}
			d.log.Warn("dispatcher closed, side effect dropped", fields...)
		}
		return false
	}
	q := d.shard(key)
	for _, t := range tasks {
		q <- t
	}
	return true
}

func (d *dispatcher) worker(q chan task) {
	defer d.wg.Done()
	for t := range q {
		d.execute(t)
	}
}

func (d *dispatcher) execute(t task) {
	wait := d.backoff
	for attempt := 1; ; attempt++ {
		err := t.run(d.ctx)
		if err == nil {
			return
		}
		fields := append(t.fields, logger.NewField("task", t.name), logger.NewField("attempt", attempt))
		if !t.durable {
			d.log.Warn("notification failed", append(fields, logger.NewField("error", err.Error()))...)
			return
		}
		if attempt > d.maxRetries {
			d.escalate(t, errors.Wrapf(err, "%s failed after %d attempts", t.name, attempt), fields)
			return
		}
		d.log.Warn("persistence failed, retrying", append(fields, logger.NewField("error", err.Error()))...)
		select {
		case <-time.After(wait):
		case <-d.ctx.Done():
			d.escalate(t, errors.Wrapf(err, "%s abandoned on shutdown", t.name), fields)
			return
		}
		wait *= 2
	}
}

func (d *dispatcher) escalate(t task, err error, fields []logger.Field) {
	d.log.Error(err, fields...)
	if d.onFailure != nil {
		d.onFailure(t.name, err)
	}
}

// close stops intake and waits for queued tasks to drain. If ctx expires
// first, in-flight retries are abandoned.
func (d *dispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}
