package jobpool

import "sync"

// node of the intake linked list, protected by intake.mu
type node struct {
	job  Job
	next *node
}

// intake is the shared hand-off queue between submitters and workers.
// It is unbounded and FIFO, a single mutex serializes every put and get, so each job
// is handed to exactly one worker. The lock is never held while a job runs.
type intake struct {
	mu     sync.Mutex
	cond   *sync.Cond
	head   *node // sentinel
	tail   *node
	size    int
	workers int // workers still able to take jobs
	closed  bool
}

func newIntake(workers int) *intake {
	s := &node{}
	in := &intake{head: s, tail: s, workers: workers}
	in.cond = sync.NewCond(&in.mu)
	return in
}

// put appends job to the queue and wakes one waiting worker.
// Fails with ErrClosed after close and with ErrNoWorkers once every worker left.
func (in *intake) put(job Job) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return ErrClosed
	}
	if in.workers == 0 {
		return ErrNoWorkers
	}
	n := &node{job: job}
	in.tail.next = n
	in.tail = n
	in.size++
	in.cond.Signal()
	return nil
}

// get blocks till a job is available or the intake is closed.
// Returns false once closed, queued jobs are never handed out after close.
func (in *intake) get() (Job, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for in.head.next == nil && !in.closed {
		in.cond.Wait()
	}
	if in.closed {
		return nil, false
	}

	n := in.head.next
	in.head.next = n.next
	if in.head.next == nil {
		in.tail = in.head
	}
	in.size--
	return n.job, true
}

// leave unregisters an exiting worker and returns number of workers left
func (in *intake) leave() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.workers--
	return in.workers
}

// len returns number of queued jobs
func (in *intake) len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.size
}

// close marks intake closed, drops queued jobs and wakes all workers.
// Returns the number of dropped jobs, the second and later calls drop nothing.
func (in *intake) close() (dropped int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return 0
	}
	in.closed = true
	dropped = in.size
	in.head.next = nil
	in.tail = in.head
	in.size = 0
	in.cond.Broadcast()
	return dropped
}
