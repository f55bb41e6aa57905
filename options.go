package jobpool

import "github.com/sirupsen/logrus"

// Option represents a configuration option for Pool
type Option func(*Pool)

// WithLogger sets the logger receiving pool and worker events.
// Default: logrus logger discarding everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRespawn keeps a worker running after its job panicked. Without it the worker
// stops on the first panic and the pool runs with one worker less till closed.
func WithRespawn() Option {
	return func(p *Pool) {
		p.respawn = true
	}
}

// WithMiddleware sets middlewares wrapping every submitted job. Middlewares are applied
// in the same order as they are provided, matching the HTTP middleware pattern in Go.
// The first middleware is the outermost wrapper, and the last middleware is the
// innermost wrapper closest to the original job.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(p *Pool) {
		p.middlewares = append(p.middlewares, middlewares...)
	}
}
