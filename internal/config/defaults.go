package config

const (
	defaultStorageDir      = "~/.local/share/filelink/files"
	defaultLogDir          = "~/.local/share/filelink/logs"
	defaultPermissionsPath = "~/.config/filelink/permissions.json"
	defaultPipePath        = "/tmp/filelink.pipe"
	defaultTelegramAPIURL  = "https://api.telegram.org"
	defaultServerBind      = "0.0.0.0:8080"
	defaultNtfyTimeout     = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageDir:      defaultStorageDir,
			LogDir:          defaultLogDir,
			PermissionsPath: defaultPermissionsPath,
			PipePath:        defaultPipePath,
		},
		Telegram: Telegram{
			APIURL: defaultTelegramAPIURL,
		},
		Server: Server{
			Bind:             defaultServerBind,
			EnableFilesRoute: false,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
