package jobpool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolCreation returned by New when capacity is less than one
	ErrPoolCreation = errors.New("pool cannot be created with no workers")
	// ErrClosed returned by Submit once pool shutdown has begun
	ErrClosed = errors.New("pool is closed")
	// ErrNoWorkers returned by Submit when every worker has died and nothing can run the job
	ErrNoWorkers = errors.New("pool has no live workers")
	// ErrNilJob returned by Submit for a nil job
	ErrNilJob = errors.New("nil job")
)

// Job is a single unit of work. Run is called at most once, on a worker goroutine.
type Job interface {
	Run()
}

// JobFunc is an adapter to allow the use of ordinary functions as Jobs.
type JobFunc func()

// Run calls f(). Nil func is a no-op.
func (f JobFunc) Run() {
	if f == nil {
		return
	}
	f()
}

// Middleware wraps job and adds functionality
type Middleware func(Job) Job

// PanicError is reported when a job panics on a worker.
type PanicError struct {
	WorkerID int
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %d: job panicked: %v", e.WorkerID, e.Value)
}

// Unwrap returns the panic value if it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
