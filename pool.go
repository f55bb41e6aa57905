package jobpool

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/go-pkgz/jobpool/metrics"
)

// State of the pool lifecycle
type State int32

// pool states, transitions are one way only
const (
	StateReady        State = iota // accepting jobs
	StateShuttingDown              // intake closed, joining workers
	StateTerminated                // all workers joined
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting down"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Pool is a fixed set of workers sharing one intake of jobs.
type Pool struct {
	capacity    int
	workers     []*worker // ordered by id, never resized
	in          *intake
	log         logrus.FieldLogger
	respawn     bool
	middlewares []Middleware

	metrics *metrics.Value
	state   atomic.Int32
	alive   atomic.Int32

	closeOnce sync.Once
	closeErr  error
}

// New makes a pool with capacity workers, all of them started before it returns.
// Capacity has to be at least 1, otherwise ErrPoolCreation is returned.
func New(capacity int, opts ...Option) (*Pool, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrPoolCreation)
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pool{
		capacity: capacity,
		in:       newIntake(capacity),
		log:      discard,
		metrics:  metrics.New(capacity),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.alive.Store(int32(capacity)) //nolint:gosec // capacity is the number of goroutines, won't overflow
	p.metrics.Set(metrics.KeyAlive, capacity)
	p.state.Store(int32(StateReady))

	p.workers = make([]*worker, capacity)
	for id := range capacity {
		p.workers[id] = newWorker(workerRequest{
			in:      p.in,
			m:       p.metrics,
			log:     p.log,
			id:      id,
			respawn: p.respawn,
			onExit:  p.workerExited,
		})
	}
	p.log.WithFields(logrus.Fields{"capacity": capacity, "respawn": p.respawn}).Debug("pool ready")
	return p, nil
}

// Submit job to the pool. Never blocks, jobs are delivered to workers in submission order.
// Returns ErrClosed once Close was called and ErrNoWorkers if all workers died,
// a rejected job is never run. The worker count is checked under the intake lock, so a job
// is never accepted after the last worker left. Jobs accepted before that stay queued
// and are dropped by Close.
func (p *Pool) Submit(job Job) error {
	if job == nil {
		return p.reject(ErrNilJob)
	}
	if p.State() != StateReady {
		return p.reject(ErrClosed)
	}

	// first middleware is outermost
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		job = p.middlewares[i](job)
	}
	if err := p.in.put(job); err != nil {
		return p.reject(err)
	}
	p.metrics.Inc(metrics.KeySubmitted)
	return nil
}

// Go submits fn as a job
func (p *Pool) Go(fn func()) error {
	if fn == nil {
		return p.reject(ErrNilJob)
	}
	return p.Submit(JobFunc(fn))
}

func (p *Pool) reject(err error) error {
	p.metrics.Inc(metrics.KeyRejected)
	p.log.WithError(err).Warn("job rejected")
	return err
}

// Close the pool. Closes the intake first, dropping jobs not taken by workers yet,
// then waits for every worker, in id order, to finish its current job and exit.
// Returns joined errors of workers died on a panic. Safe to call multiple times,
// all calls block till shutdown completes. Must not be called from a job.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.shutdown()
	})
	return p.closeErr
}

func (p *Pool) shutdown() error {
	p.state.Store(int32(StateShuttingDown))
	if dropped := p.in.close(); dropped > 0 {
		p.metrics.Add(metrics.KeyDropped, dropped)
		p.log.WithField("dropped", dropped).Warn("queued jobs dropped on shutdown")
	}

	var errs *multierror.Error
	for _, w := range p.workers {
		if err := w.join(); err != nil {
			p.log.WithError(err).WithField("worker", w.id).Error("worker terminated abnormally")
			errs = multierror.Append(errs, fmt.Errorf("join worker %d: %w", w.id, err))
			continue
		}
		p.log.WithField("worker", w.id).Debug("worker joined")
	}
	p.state.Store(int32(StateTerminated))
	p.log.Debug("pool terminated")
	return errs.ErrorOrNil()
}

func (p *Pool) workerExited() {
	p.in.leave()
	p.alive.Add(-1)
	p.metrics.Add(metrics.KeyAlive, -1)
}

// Size returns number of workers the pool was built with
func (p *Pool) Size() int {
	return p.capacity
}

// WorkerIDs returns ids of all workers, ordered
func (p *Pool) WorkerIDs() []int {
	res := make([]int, len(p.workers))
	for i, w := range p.workers {
		res[i] = w.id
	}
	return res
}

// Alive returns number of worker goroutines still running
func (p *Pool) Alive() int {
	return int(p.alive.Load())
}

// Pending returns number of jobs submitted but not taken by any worker
func (p *Pool) Pending() int {
	return p.in.len()
}

// State returns current lifecycle state
func (p *Pool) State() State {
	return State(p.state.Load())
}

// Metrics returns combined metrics from all workers
func (p *Pool) Metrics() *metrics.Value {
	return p.metrics
}
