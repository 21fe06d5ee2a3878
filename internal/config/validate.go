package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOnshape(); err != nil {
		return err
	}
	if err := c.validateViewer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOnshape() error {
	if c.Onshape.AccessKey == "" || c.Onshape.SecretKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/lathe/config.toml"
		}
		return fmt.Errorf("onshape.access_key and onshape.secret_key are required. Set ONSHAPE_ACCESS_KEY/ONSHAPE_SECRET_KEY env vars or edit %s (create with 'lathe config init')", defaultPath)
	}
	if c.Onshape.DocumentID == "" {
		return errors.New("onshape.document_id must be set")
	}
	if c.Onshape.WorkspaceID == "" {
		return errors.New("onshape.workspace_id must be set")
	}
	if !strings.HasPrefix(c.Onshape.BaseURL, "http://") && !strings.HasPrefix(c.Onshape.BaseURL, "https://") {
		return fmt.Errorf("onshape.base_url must be an http(s) URL, got %q", c.Onshape.BaseURL)
	}
	return nil
}

func (c *Config) validateViewer() error {
	if c.Viewer.SelectorHeight >= c.Viewer.ViewportHeight {
		return errors.New("viewer.selector_height must be smaller than viewer.viewport_height")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
