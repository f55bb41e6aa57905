// Package server is a tiny static-file server handing every accepted connection
// to a jobpool.Pool as a single job.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/go-pkgz/jobpool"
	"github.com/go-pkgz/jobpool/internal/config"
)

const (
	statusOK          = "HTTP/1.1 200 OK"
	statusNotFound    = "HTTP/1.1 404 NOT FOUND"
	statusServerError = "HTTP/1.1 500 INTERNAL SERVER ERROR"

	pageHello = "hello.html"
	pageError = "err.html"
)

// Submitter accepts jobs, satisfied by *jobpool.Pool
type Submitter interface {
	Submit(job jobpool.Job) error
}

// Server accepts TCP connections and runs each one as a pool job
type Server struct {
	cfg  *config.Config
	pool Submitter
	log  logrus.FieldLogger
}

// New makes a server submitting connections to pool
func New(cfg *config.Config, pool Submitter, log logrus.FieldLogger) *Server {
	return &Server{cfg: cfg, pool: pool, log: log}
}

// ListenAndServe listens on the configured address and serves till ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	s.log.Infof("running server on %s", l.Addr())
	return s.Serve(ctx, l)
}

// Serve accepts connections on l, each one handled by a pool job.
// Returns nil once ctx is done and l is closed.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return l.Close()
	})
	g.Go(func() error {
		for {
			conn, err := l.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if errors.Is(err, net.ErrClosed) {
					return err
				}
				s.log.Warnf("failed to establish a connection: %v", err)
				continue
			}
			if err := s.pool.Submit(connJob{s: s, conn: conn}); err != nil {
				s.log.Errorf("failed to submit connection from %s: %v", conn.RemoteAddr(), err)
				_ = conn.Close()
			}
		}
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// connJob handles a single connection on a pool worker
type connJob struct {
	s    *Server
	conn net.Conn
}

func (j connJob) Run() {
	defer j.conn.Close()
	j.s.handleConnection(j.conn)
}

// handleConnection reads the request line, waiting for it no longer than the read timeout,
// so an idle client can't hold a worker and block pool close.
func (s *Server) handleConnection(conn net.Conn) {
	if s.cfg.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			s.log.Warnf("failed to set read deadline: %v", err)
			return
		}
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			s.log.Warn("no lines found in request")
			return
		}
		s.log.Warnf("failed to read line: %v", err)
		return
	}
	request := strings.TrimRight(line, "\r\n")

	status, page := s.route(request)
	contents, err := os.ReadFile(filepath.Join(s.cfg.Root, page))
	if err != nil {
		s.log.Errorf("failed to read html file: %v", err)
		if _, err = io.WriteString(conn, statusServerError+"\r\n\r\n"); err != nil {
			s.log.Warnf("failed to write response: %v", err)
		}
		return
	}

	response := fmt.Sprintf("%s\r\nContent-Length: %d\r\n\r\n%s", status, len(contents), contents)
	if _, err := io.WriteString(conn, response); err != nil {
		s.log.Warnf("failed to write response: %v", err)
	}
	s.log.WithFields(logrus.Fields{"request": request, "status": status}).Debug("request served")
}

// route selects status line and page for the request line
func (s *Server) route(request string) (status, page string) {
	switch request {
	case "GET / HTTP/1.1":
		return statusOK, pageHello
	case "GET /sleep HTTP/1.1":
		time.Sleep(s.cfg.SleepDelay)
		return statusOK, pageHello
	}
	return statusNotFound, pageError
}
