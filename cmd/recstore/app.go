package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cqkv/recstore"
	"github.com/cqkv/recstore/config"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg    *config.Config
	logger log.Logger
	store  recstore.Store
	out    io.Writer
}

func newApp(configPath string, out io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(os.Stderr, cfg.Log.Level)

	opts := []recstore.Option{
		recstore.WithLogger(logger),
		recstore.WithValidator(cfg.Validation),
		recstore.WithSyncWrites(cfg.Storage.SyncWrites),
	}

	var store recstore.Store
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = recstore.NewMemStore(opts...)
	default:
		store, err = recstore.OpenFileStore(cfg.Storage.Path, opts...)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Storage.Path, err)
		}
	}

	if cfg.Instrument {
		instrumented, err := recstore.NewInstrumented(store, logger, prometheus.NewRegistry())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		store = instrumented
	}

	return &app{cfg: cfg, logger: logger, store: store, out: out}, nil
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var filter level.Option
	switch lvl {
	case "debug":
		filter = level.AllowDebug()
	case "warn":
		filter = level.AllowWarn()
	case "error":
		filter = level.AllowError()
	default:
		filter = level.AllowInfo()
	}
	return level.NewFilter(logger, filter)
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		level.Error(a.logger).Log("msg", "close store", "err", err)
	}
}
