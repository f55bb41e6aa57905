package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/go-pkgz/jobpool"
	"github.com/go-pkgz/jobpool/internal/config"
	"github.com/go-pkgz/jobpool/internal/server"
	"github.com/go-pkgz/jobpool/middleware"
)

var configFile string
var debug bool
var versionFlag bool
var version = "dev"

func main() {
	pflag.StringVarP(&configFile, "config", "c", "", "config file path")
	pflag.BoolVarP(&debug, "debug", "d", false, "set log level to DEBUG")
	pflag.BoolVarP(&versionFlag, "version", "v", false, "print version")
	pflag.Parse()

	if versionFlag {
		fmt.Println(version)
		return
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.New(configFile)
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}
	log.Infof("jobsrv %s, workers: %d, address: %s, root: %s", version, cfg.Workers, cfg.Address, cfg.Root)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Errorf("jobsrv failed: %v", err)
		cancel()
		os.Exit(1)
	}
	log.Info("jobsrv stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.StandardLogger()
	opts := []jobpool.Option{
		jobpool.WithLogger(logger.WithField("component", "pool")),
		jobpool.WithMiddleware(middleware.Recovery(func(v any) {
			logger.Errorf("connection handler panicked: %v", v)
		})),
	}
	if cfg.Respawn {
		opts = append(opts, jobpool.WithRespawn())
	}

	p, err := jobpool.New(cfg.Workers, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warnf("pool closed with errors: %v", err)
		}
		logger.Infof("pool stats: %s", p.Metrics().GetStats())
	}()

	g, gctx := errgroup.WithContext(ctx)
	srv := server.New(cfg, p, logger.WithField("component", "server"))
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	if cfg.Prometheus != nil {
		g.Go(func() error {
			return server.ServeMetrics(gctx, cfg.Prometheus.Address, server.MetricsRouter("jobsrv", p.Metrics()), logger)
		})
	}
	return g.Wait()
}
