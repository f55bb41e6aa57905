// Package metrics collects counters and timings of a jobpool.Pool.
// Per-worker values are lock-free, keyed pool counters share a single RW lock.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// keys of the pool-wide counters
const (
	KeySubmitted = "submitted"
	KeyRejected  = "rejected"
	KeyDropped   = "dropped"
	KeyAlive     = "alive"
)

// TimerType selects which per-worker duration a timer adds to
type TimerType int

// timer kinds
const (
	TimerProc TimerType = iota // time spent running jobs
	TimerWait                  // time spent waiting for the next job
)

// Value is a struct that holds the metrics for a pool
type Value struct {
	startTime time.Time
	userLock  sync.RWMutex
	userData  map[string]int

	workers []workerValue
}

type workerValue struct {
	processed atomic.Int64
	panics    atomic.Int64
	procTime  atomic.Int64 // nanoseconds
	waitTime  atomic.Int64 // nanoseconds
}

// WorkerStats is a snapshot of a single worker's metrics
type WorkerStats struct {
	ID             int
	Processed      int
	Panics         int
	ProcessingTime time.Duration
	WaitTime       time.Duration
}

// Stats is a snapshot of the combined metrics of all workers and the pool counters
type Stats struct {
	Processed      int
	Panics         int
	Submitted      int
	Rejected       int
	Dropped        int
	Alive          int
	ProcessingTime time.Duration
	WaitTime       time.Duration
	TotalTime      time.Duration
}

// New makes thread-safe metrics for the given number of workers
func New(workers int) *Value {
	if workers < 0 {
		workers = 0
	}
	return &Value{startTime: time.Now(), userData: map[string]int{}, workers: make([]workerValue, workers)}
}

// Add increments value for a given key and returns new value
func (m *Value) Add(key string, delta int) int {
	m.userLock.Lock()
	defer m.userLock.Unlock()
	m.userData[key] += delta
	return m.userData[key]
}

// Inc increments value for given key by one
func (m *Value) Inc(key string) int {
	return m.Add(key, 1)
}

// Set value for given key
func (m *Value) Set(key string, val int) {
	m.userLock.Lock()
	defer m.userLock.Unlock()
	m.userData[key] = val
}

// Get returns value for given key
func (m *Value) Get(key string) int {
	m.userLock.RLock()
	defer m.userLock.RUnlock() // nolint gocritic

	return m.userData[key]
}

// Workers returns the number of workers tracked
func (m *Value) Workers() int {
	return len(m.workers)
}

// IncProcessed counts a job completed by worker id
func (m *Value) IncProcessed(id int) {
	m.workers[id].processed.Add(1)
}

// IncPanics counts a job panic on worker id
func (m *Value) IncPanics(id int) {
	m.workers[id].panics.Add(1)
}

// AddWaitTime adds idle time of worker id
func (m *Value) AddWaitTime(id int, d time.Duration) {
	m.workers[id].waitTime.Add(int64(d))
}

// StartTimer starts a timer for worker id and returns a function stopping it.
// The elapsed time is added to the duration selected by tt.
func (m *Value) StartTimer(id int, tt TimerType) func() {
	st := time.Now()
	return func() {
		d := int64(time.Since(st))
		switch tt {
		case TimerProc:
			m.workers[id].procTime.Add(d)
		case TimerWait:
			m.workers[id].waitTime.Add(d)
		}
	}
}

// Worker returns a snapshot of worker id metrics
func (m *Value) Worker(id int) WorkerStats {
	w := &m.workers[id]
	return WorkerStats{
		ID:             id,
		Processed:      int(w.processed.Load()),
		Panics:         int(w.panics.Load()),
		ProcessingTime: time.Duration(w.procTime.Load()),
		WaitTime:       time.Duration(w.waitTime.Load()),
	}
}

// GetStats returns combined stats of all workers and pool counters
func (m *Value) GetStats() Stats {
	res := Stats{TotalTime: time.Since(m.startTime)}
	for id := range m.workers {
		ws := m.Worker(id)
		res.Processed += ws.Processed
		res.Panics += ws.Panics
		res.ProcessingTime += ws.ProcessingTime
		res.WaitTime += ws.WaitTime
	}
	m.userLock.RLock()
	res.Submitted = m.userData[KeySubmitted]
	res.Rejected = m.userData[KeyRejected]
	res.Dropped = m.userData[KeyDropped]
	res.Alive = m.userData[KeyAlive]
	m.userLock.RUnlock()
	return res
}

// String returns stats in a compact key:value form
func (s Stats) String() string {
	return fmt.Sprintf("[processed:%d, panics:%d, submitted:%d, rejected:%d, dropped:%d, alive:%d, proc:%v, wait:%v, total:%v]",
		s.Processed, s.Panics, s.Submitted, s.Rejected, s.Dropped, s.Alive,
		s.ProcessingTime.Round(time.Millisecond), s.WaitTime.Round(time.Millisecond), s.TotalTime.Round(time.Millisecond))
}

// String returns sorted key:vals string representation of metrics and adds duration
func (m *Value) String() string {
	duration := time.Since(m.startTime)

	m.userLock.RLock()
	defer m.userLock.RUnlock()

	sortedKeys := func() (res []string) {
		for k := range m.userData {
			res = append(res, k)
		}
		sort.Strings(res)
		return res
	}()

	udata := make([]string, len(sortedKeys))
	for i, k := range sortedKeys {
		udata[i] = fmt.Sprintf("%s:%d", k, m.userData[k])
	}

	um := ""
	if len(udata) > 0 {
		um = fmt.Sprintf("[%s]", strings.Join(udata, ", "))
	}
	return fmt.Sprintf("%v %s", duration, um)
}
