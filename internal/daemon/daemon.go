package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lathe/internal/config"
	"lathe/internal/jobs"
	"lathe/internal/logging"
	"lathe/internal/report"
	"lathe/internal/scene"
	"lathe/internal/viewer"
)

// Daemon owns the viewer process lifecycle and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *jobs.Store
	scene      *scene.Manager
	controller *viewer.Controller
	errs       *report.State

	sessionID string
	lockPath  string
	lock      *flock.Flock
	api       *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool            `json:"running"`
	SessionID    string          `json:"sessionId"`
	Controller   viewer.Status   `json:"controller"`
	Error        report.Snapshot `json:"error"`
	Viewport     scene.Viewport  `json:"viewport"`
	JobDBPath    string          `json:"jobDbPath"`
	LockFilePath string          `json:"lockFilePath"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, sceneMgr *scene.Manager, controller *viewer.Controller, errs *report.State, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || sceneMgr == nil || controller == nil || errs == nil {
		return nil, errors.New("daemon requires config, store, scene manager, controller, and error state")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "lathed.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		scene:      sceneMgr,
		controller: controller,
		errs:       errs,
		sessionID:  uuid.NewString(),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, loads the element directory, and starts the
// API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lathe daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	// The element service being down at startup is not fatal; the directory
	// can be refreshed through the API once it recovers.
	if _, err := d.controller.LoadDirectory(d.ctx); err != nil {
		d.logger.Warn("load element directory", logging.Error(err))
	}

	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("lathe daemon started",
		logging.String(logging.FieldSessionID, d.sessionID),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("lathe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.scene.Close()
	return d.store.Close()
}

// Status reports runtime information for the status API.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		SessionID:    d.sessionID,
		Controller:   d.controller.Status(),
		Error:        d.errs.Snapshot(),
		Viewport:     d.scene.ViewportState(),
		JobDBPath:    d.store.Path(),
		LockFilePath: d.lockPath,
	}
}

// APIAddr returns the bound API address, or empty before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}
