package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration consistency after normalization.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.APIBind) == "" {
		problems = append(problems, "paths.api_bind must not be empty")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		problems = append(problems, "omdb.base_url must not be empty")
	}
	if c.MaxConcurrentWorkers < 1 {
		problems = append(problems, "sync.max_concurrent_workers must be at least 1")
	}
	if c.RetryLimit < 1 {
		problems = append(problems, "sync.retry_limit must be at least 1")
	}
	if c.BackoffBaseMs < 1 {
		problems = append(problems, "sync.backoff_base_ms must be at least 1")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.log_format %q is not supported (use console or json)", c.LogFormat))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// RequireAPIKey returns an error when no OMDB API key is configured. Commands
// that only read the local catalog skip this check.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("omdb.api_key is not configured (set it in the config file or export OMDB_APIKEY)")
	}
	return nil
}
