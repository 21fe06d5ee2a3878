package config

const (
	defaultLogDir         = "~/.local/share/lathe/logs"
	defaultExportDir      = "~/.local/share/lathe/exports"
	defaultAPIBind        = "127.0.0.1:7511"
	defaultOnshapeBaseURL = "https://cad.onshape.com/api"
	defaultRequestTimeout = 30
	defaultPollInterval   = 2
	defaultFrameInterval  = 16
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
	defaultSelectorHeight = 40
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
			APIBind:   defaultAPIBind,
		},
		Onshape: Onshape{
			BaseURL:        defaultOnshapeBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Viewer: Viewer{
			PollInterval:   defaultPollInterval,
			FrameInterval:  defaultFrameInterval,
			ViewportWidth:  defaultViewportWidth,
			ViewportHeight: defaultViewportHeight,
			SelectorHeight: defaultSelectorHeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
