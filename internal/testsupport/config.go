package testsupport

import (
	"path/filepath"
	"testing"

	"lathe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Onshape.AccessKey = "test-access"
	cfg.Onshape.SecretKey = "test-secret"
	cfg.Onshape.DocumentID = "doc-test"
	cfg.Onshape.WorkspaceID = "ws-test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithOnshapeBaseURL points the test config at a local stand-in service.
func WithOnshapeBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Onshape.BaseURL = url
	}
}

// WithViewport overrides the viewer window dimensions on the test config.
func WithViewport(width, height, selectorHeight int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Viewer.ViewportWidth = width
		cfg.Viewer.ViewportHeight = height
		cfg.Viewer.SelectorHeight = selectorHeight
	}
}
