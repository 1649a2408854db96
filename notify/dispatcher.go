package notify

import (
	"context"
	"sync"
	"sync/atomic"
)

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

type job struct {
	ctx    context.Context
	msg    Message
	result chan error
}

// Dispatcher runs Notifier.Send on a bounded pool of workers. Dispatch
// waits for the outcome, so callers see delivery errors, but a slow
// transport only ever occupies pool workers and the waiting caller.
type Dispatcher struct {
	notifier  Notifier
	jobs      chan job
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	// mu orders enqueues against Close: a job sent under the read lock is
	// always seen by the draining workers.
	mu     sync.RWMutex
	closed bool

	sent   atomic.Uint64
	failed atomic.Uint64
}

func NewDispatcher(cfg DispatcherConfig, notifier Notifier) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 16
	}

	d := &Dispatcher{
		notifier: notifier,
		jobs:     make(chan job, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.run()
	}
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case j := <-d.jobs:
			d.handle(j)
		case <-d.done:
			for {
				select {
				case j := <-d.jobs:
					d.handle(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handle(j job) {
	if err := j.ctx.Err(); err != nil {
		j.result <- err
		return
	}
	err := d.notifier.Send(j.ctx, j.msg)
	if err != nil {
		d.failed.Add(1)
	} else {
		d.sent.Add(1)
	}
	j.result <- err
}

// Dispatch queues msg and waits for the notifier's result or ctx.
// It returns ErrQueueFull without waiting when the queue is saturated.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if d == nil {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	j := job{ctx: ctx, msg: msg, result: make(chan error, 1)}
	if err := d.enqueue(j); err != nil {
		return err
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting work and waits for queued jobs to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.done)
		d.wg.Wait()
	})
}

// Sent returns the number of messages the notifier accepted.
func (d *Dispatcher) Sent() uint64 {
	if d == nil {
		return 0
	}
	return d.sent.Load()
}

// Failed returns the number of messages the notifier rejected.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
