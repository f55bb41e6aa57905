package jobpool

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/go-pkgz/jobpool/metrics"
)

// workerRequest is a request to worker goroutine containing all necessary data
type workerRequest struct {
	in      *intake
	m       *metrics.Value
	log     logrus.FieldLogger
	id      int
	respawn bool   // keep running after a job panic
	onExit  func() // called once the worker goroutine is about to finish
}

// worker owns one goroutine pulling jobs from the shared intake
type worker struct {
	id   int
	done chan struct{} // closed when the goroutine exits
	err  error         // set before done is closed, non-nil if the worker died on a panic
}

// newWorker spawns the worker goroutine and returns immediately
func newWorker(r workerRequest) *worker {
	w := &worker{id: r.id, done: make(chan struct{})}
	go w.run(r)
	return w
}

// run is the worker loop. Jobs are taken one by one and executed outside of the intake lock,
// the loop ends when the intake is closed.
func (w *worker) run(r workerRequest) {
	defer close(w.done)
	defer r.onExit()

	log := r.log.WithField("worker", r.id)
	log.Debug("worker started")
	for {
		waitEndTmr := r.m.StartTimer(r.id, metrics.TimerWait)
		job, ok := r.in.get()
		waitEndTmr()
		if !ok {
			log.Debug("worker disconnecting, intake closed")
			return
		}

		log.Debug("worker picked a job")
		if perr := w.exec(r, job); perr != nil {
			r.m.IncPanics(r.id)
			log.WithError(perr).WithField("stack", string(perr.Stack)).Error("job panicked")
			if !r.respawn {
				w.err = perr
				log.Warn("worker stopped, pool capacity reduced")
				return
			}
			continue
		}
		r.m.IncProcessed(r.id)
	}
}

// exec runs a single job and converts its panic, if any, to PanicError
func (w *worker) exec(r workerRequest, job Job) (perr *PanicError) {
	procEndTmr := r.m.StartTimer(r.id, metrics.TimerProc)
	defer procEndTmr()
	defer func() {
		if v := recover(); v != nil {
			perr = &PanicError{WorkerID: r.id, Value: v, Stack: debug.Stack()}
		}
	}()
	job.Run()
	return nil
}

// join blocks till the worker goroutine exits and returns its fatal error
func (w *worker) join() error {
	<-w.done
	return w.err
}
