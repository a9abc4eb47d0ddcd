package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		URL:               "https://livy.example.com:8998",
		User:              "alice",
		PollInterval:      time.Second,
		SessionDeadline:   time.Hour,
		StatementDeadline: time.Hour,
		LogFormat:         "text",
		LogLevel:          "info",
	}
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing URL", mutate: func(c *Config) { c.URL = "" }, wantErr: "gateway URL is required"},
		{name: "relative URL", mutate: func(c *Config) { c.URL = "livy:8998/x" }, wantErr: "must be an absolute"},
		{name: "missing user", mutate: func(c *Config) { c.User = "" }, wantErr: "user is required"},
		{name: "zero interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: "poll interval must be positive"},
		{name: "negative deadline", mutate: func(c *Config) { c.SessionDeadline = -time.Second }, wantErr: "must not be negative"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "invalid log-level"},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid log-format"},
		{name: "profile without file", mutate: func(c *Config) { c.ProfileName = "etl" }, wantErr: "no profile file given"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)

			if tc.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, cfg.URL, got.URL)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
