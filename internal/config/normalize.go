package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOnshape()
	c.normalizeViewer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeOnshape() {
	c.Onshape.BaseURL = strings.TrimRight(strings.TrimSpace(c.Onshape.BaseURL), "/")
	if c.Onshape.BaseURL == "" {
		c.Onshape.BaseURL = defaultOnshapeBaseURL
	}
	c.Onshape.AccessKey = strings.TrimSpace(c.Onshape.AccessKey)
	c.Onshape.SecretKey = strings.TrimSpace(c.Onshape.SecretKey)
	if c.Onshape.AccessKey == "" {
		c.Onshape.AccessKey = strings.TrimSpace(os.Getenv("ONSHAPE_ACCESS_KEY"))
	}
	if c.Onshape.SecretKey == "" {
		c.Onshape.SecretKey = strings.TrimSpace(os.Getenv("ONSHAPE_SECRET_KEY"))
	}
	c.Onshape.DocumentID = strings.TrimSpace(c.Onshape.DocumentID)
	c.Onshape.WorkspaceID = strings.TrimSpace(c.Onshape.WorkspaceID)
	if c.Onshape.RequestTimeout <= 0 {
		c.Onshape.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeViewer() {
	if c.Viewer.PollInterval <= 0 {
		c.Viewer.PollInterval = defaultPollInterval
	}
	if c.Viewer.FrameInterval <= 0 {
		c.Viewer.FrameInterval = defaultFrameInterval
	}
	if c.Viewer.ViewportWidth <= 0 {
		c.Viewer.ViewportWidth = defaultViewportWidth
	}
	if c.Viewer.ViewportHeight <= 0 {
		c.Viewer.ViewportHeight = defaultViewportHeight
	}
	if c.Viewer.SelectorHeight <= 0 {
		c.Viewer.SelectorHeight = defaultSelectorHeight
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
