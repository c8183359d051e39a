package config

const (
	defaultDataDir              = "~/.local/share/matinee"
	defaultLogDir               = "~/.local/share/matinee/logs"
	defaultMediaDir             = "~/movies"
	defaultAPIBind              = "127.0.0.1:7788"
	defaultOMDBBaseURL          = "http://www.omdbapi.com"
	defaultRequestTimeout       = 10
	defaultMaxConcurrentWorkers = 3
	defaultRetryLimit           = 3
	defaultBackoffBaseMs        = 200
	defaultLogLevel             = "info"
	defaultLogFormat            = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			MediaDir: defaultMediaDir,
			APIBind:  defaultAPIBind,
		},
		OMDB: OMDB{
			BaseURL:        defaultOMDBBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Sync: Sync{
			MaxConcurrentWorkers: defaultMaxConcurrentWorkers,
			RetryLimit:           defaultRetryLimit,
			BackoffBaseMs:        defaultBackoffBaseMs,
		},
		Logging: Logging{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}
