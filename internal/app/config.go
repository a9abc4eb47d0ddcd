package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Defaults for the timing settings.
const (
	DefaultPollInterval      = time.Second
	DefaultSessionDeadline   = time.Hour
	DefaultStatementDeadline = 17200 * time.Second
	DefaultRequestTimeout    = time.Minute
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	URL            string
	User           string
	Insecure       bool
	RequestTimeout time.Duration

	ProfileFiles []string // hcl files or directories
	ProfileName  string

	PollInterval      time.Duration
	SessionDeadline   time.Duration
	StatementDeadline time.Duration

	LogFormat string
	LogLevel  string
	// Interactive enables the spinner and colors on the console.
	Interactive bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	if cfg.URL == "" {
		errs = append(errs, errors.New("gateway URL is required"))
	} else if u, err := url.Parse(cfg.URL); err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("gateway URL %q must be an absolute http(s) URL", cfg.URL))
	}
	if cfg.User == "" {
		errs = append(errs, errors.New("user is required"))
	}
	if cfg.ProfileName != "" && len(cfg.ProfileFiles) == 0 {
		errs = append(errs, fmt.Errorf("profile %q requested but no profile file given", cfg.ProfileName))
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval))
	}
	if cfg.SessionDeadline < 0 || cfg.StatementDeadline < 0 || cfg.RequestTimeout < 0 {
		errs = append(errs, errors.New("deadlines and timeouts must not be negative"))
	}
	if !validLevel(cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	cfg.ProfileFiles = append([]string(nil), cfg.ProfileFiles...)
	return &cfg, nil
}
