// Package jobpool provides a fixed-size pool of workers running single-shot jobs.
// Each job is executed exactly once, by one of the workers, in a goroutine owned by the pool.
//
// # Basic Usage
//
//	p, err := jobpool.New(4)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	// submit work
//	if err := p.Go(func() { handle(conn) }); err != nil {
//	    log.Printf("job rejected: %v", err)
//	}
//
// Any type with a Run method is a Job, JobFunc adapts an ordinary function.
//
// # Delivery and Shutdown
//
// All workers share one intake. Jobs are handed out in submission order, each to a single
// worker, and run outside of the intake lock, so workers execute them in parallel.
// Submit never blocks, the intake is unbounded.
//
// Close is the only shutdown signal. It closes the intake, dropping jobs not yet taken
// by a worker, then waits for every worker to finish its current job and exit, in worker id
// order. Jobs submitted after Close started are rejected with ErrClosed.
//
// # Panics
//
// A panicking job never crashes the process. By default the worker running it stops
// and the pool keeps working with one worker less; Close reports the PanicError of each
// such worker. With WithRespawn the worker logs the panic and keeps taking jobs.
// Submit returns ErrNoWorkers when no worker is left.
//
// # Options
//
//	p, _ := jobpool.New(4,
//	    jobpool.WithLogger(logrus.StandardLogger()),
//	    jobpool.WithRespawn(),
//	    jobpool.WithMiddleware(middleware.Recovery(nil)),
//	)
//
// # Metrics
//
// The pool collects processed jobs, panics, processing and wait time per worker, and
// submitted, rejected and dropped counts:
//
//	stats := p.Metrics().GetStats()
//	fmt.Printf("processed: %d, dropped: %d", stats.Processed, stats.Dropped)
//
// metrics.NewCollector exports the same values to prometheus.
package jobpool
