// Package middleware provides common middleware implementations for the jobpool package.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/go-pkgz/jobpool"
)

// Recovery returns a middleware that recovers from panics inside the job, so the worker
// running it never sees the panic and keeps working.
// If handler is provided, it will be called with the panic value.
func Recovery(handler func(any)) jobpool.Middleware {
	return func(next jobpool.Job) jobpool.Job {
		return jobpool.JobFunc(func() {
			defer func() {
				if r := recover(); r != nil && handler != nil {
					handler(r)
				}
			}()
			next.Run()
		})
	}
}

// RateLimit returns a middleware delaying each job till limiter allows it to run.
// The wait happens on the worker, a throttled job keeps its worker busy.
// Panics if limiter is nil or can never allow a job, i.e. has a finite limit and burst below 1.
func RateLimit(limiter *rate.Limiter) jobpool.Middleware {
	if limiter == nil {
		panic("middleware: nil rate limiter")
	}
	if limiter.Limit() != rate.Inf && limiter.Burst() < 1 {
		panic(fmt.Sprintf("middleware: rate limiter burst %d, jobs would never run", limiter.Burst()))
	}
	return func(next jobpool.Job) jobpool.Job {
		return jobpool.JobFunc(func() {
			// burst checked above and the context is never done, wait can't fail
			_ = limiter.Wait(context.Background())
			next.Run()
		})
	}
}

// Logging returns a middleware reporting start and completion of each job at debug level.
// Completion of a panicking job is not reported.
func Logging(log logrus.FieldLogger, name string) jobpool.Middleware {
	return func(next jobpool.Job) jobpool.Job {
		return jobpool.JobFunc(func() {
			l := log.WithField("job", name)
			st := time.Now()
			l.Debug("job started")
			next.Run()
			l.WithField("duration", time.Since(st)).Debug("job completed")
		})
	}
}
