package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/livysubmit/internal/config"
	"github.com/vk/livysubmit/internal/credentials"
	"github.com/vk/livysubmit/internal/ctxlog"
	"github.com/vk/livysubmit/internal/gateway"
	"k8s.io/utils/clock"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	creds   credentials.Provider
	profile *config.Profile
	clock   clock.Clock
}

// Option configures an App.
type Option func(*App)

// WithClock replaces the clock used for polling.
func WithClock(clk clock.Clock) Option {
	return func(a *App) { a.clock = clk }
}

// NewApp builds an App. Console output goes to outW and logs to logW. When
// cfg names a profile, it is loaded through loader and must exist.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader, creds credentials.Provider, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		creds:  creds,
		clock:  clock.RealClock{},
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.ProfileName != "" {
		profiles, err := loader.Load(ctx, cfg.ProfileFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		p, ok := profiles[cfg.ProfileName]
		if !ok {
			names := make([]string, 0, len(profiles))
			for name := range profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("profile %q not found (available: %s)", cfg.ProfileName, strings.Join(names, ", "))
		}
		logger.Debug("Profile selected.", "profile", p.Name, "source", p.Source)
		a.profile = p
	}

	return a, nil
}

// connect resolves the password and returns a gateway client. Callers must
// close it.
func (a *App) connect(ctx context.Context) (*gateway.Client, error) {
	return gateway.New(ctx, gateway.Config{
		URL:      a.config.URL,
		User:     a.config.User,
		Insecure: a.config.Insecure,
		Timeout:  a.config.RequestTimeout,
	}, a.creds)
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
