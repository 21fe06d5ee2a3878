package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lathe/internal/config"
	"lathe/internal/daemon"
	"lathe/internal/gltf"
	"lathe/internal/jobs"
	"lathe/internal/onshape"
	"lathe/internal/report"
	"lathe/internal/scene"
	"lathe/internal/viewer"
)

// buildDaemon assembles the daemon's dependency graph from configuration.
func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	store, err := jobs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Onshape.RequestTimeout) * time.Second}
	client, err := onshape.New(cfg.Onshape.BaseURL, cfg.Onshape.AccessKey, cfg.Onshape.SecretKey,
		onshape.WithHTTPClient(httpClient))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build api client: %w", err)
	}

	errs := report.NewState(logger)
	sceneMgr := scene.NewManager(gltf.NewDecoder(), &scene.CountingRenderer{}, errs, logger, scene.Options{
		FrameInterval:  time.Duration(cfg.Viewer.FrameInterval) * time.Millisecond,
		ViewportWidth:  cfg.Viewer.ViewportWidth,
		ViewportHeight: cfg.Viewer.ViewportHeight,
		SelectorHeight: cfg.Viewer.SelectorHeight,
	})

	controller := viewer.NewController(client, sceneMgr, errs, store, logger, viewer.Options{
		DocumentID:   cfg.Onshape.DocumentID,
		WorkspaceID:  cfg.Onshape.WorkspaceID,
		PollInterval: time.Duration(cfg.Viewer.PollInterval) * time.Second,
	})

	d, err := daemon.New(cfg, store, sceneMgr, controller, errs, logger)
	if err != nil {
		sceneMgr.Close()
		_ = store.Close()
		return nil, err
	}
	return d, nil
}
