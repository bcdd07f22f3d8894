package config

const (
	defaultServerURL        = "http://localhost:5000"
	defaultRequestTimeout   = 120
	defaultStateDir         = "~/.local/share/minuteminds/state"
	defaultLogDir           = "~/.local/share/minuteminds/logs"
	defaultExportDir        = "~/minutes"
	defaultExportFormat     = "docx"
	defaultTranslateTarget  = "en"
	defaultWatchSettleMs    = 500
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// defaultTranslateTargets mirrors the language menu the service supports.
var defaultTranslateTargets = []string{"en", "es", "fr", "de", "it", "pt", "ru", "ja", "zh"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			URL:            defaultServerURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Paths: Paths{
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Transcribe: Transcribe{
			Denoise: false,
		},
		Translate: Translate{
			DefaultTarget: defaultTranslateTarget,
			Targets:       append([]string(nil), defaultTranslateTargets...),
		},
		Export: Export{
			DefaultFormat: defaultExportFormat,
		},
		Watch: Watch{
			SettleMillis: defaultWatchSettleMs,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
