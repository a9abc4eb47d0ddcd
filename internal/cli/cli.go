package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vk/livysubmit/internal/app"
	"github.com/vk/livysubmit/internal/credentials"
	"github.com/vk/livysubmit/internal/hcl_adapter"
	"k8s.io/utils/clock"
)

// Environment variables read by the CLI.
const (
	EnvURL         = "LIVY_SUBMIT_URL"
	EnvProfileFile = "LIVY_SUBMIT_PROFILE_FILE"
	EnvUser        = "LIVY_SUBMIT_USER"
)

// promptSentinel is the value --password takes when given without a value.
const promptSentinel = "\x00prompt"

// Env holds the process-level collaborators of the CLI.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  *os.File
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Interactive reports whether Stdout is a terminal.
	Interactive bool
	// Credentials, when set, replaces the keyring and prompt lookup used
	// when no password flag is given.
	Credentials credentials.Provider
	// Clock defaults to the real clock.
	Clock clock.Clock
}

type globalFlags struct {
	url               string
	username          string
	password          string
	insecure          bool
	requestTimeout    time.Duration
	profile           string
	profileFile       string
	envFile           string
	pollInterval      time.Duration
	sessionDeadline   time.Duration
	statementDeadline time.Duration
	logLevel          string
	logFormat         string
	noColor           bool
}

// Execute runs the command line in args. The returned error, if any, is an
// *ExitError carrying the exit code.
func Execute(ctx context.Context, args []string, env Env) error {
	root := NewRootCommand(env)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "unknown command") || strings.HasPrefix(err.Error(), "unknown flag") {
		err = usageError(err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitCode(err), Message: err.Error(), Err: err}
}

// NewRootCommand builds the command tree.
func NewRootCommand(env Env) *cobra.Command {
	if env.Getenv == nil {
		env.Getenv = os.Getenv
	}
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "livysubmit",
		Short:         "Submit Python scripts to a Spark cluster through a Livy gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	pf := root.PersistentFlags()
	pf.StringVar(&g.url, "livy-url", "", "Gateway URL (env "+EnvURL+")")
	pf.StringVarP(&g.username, "username", "u", "", "User to run as on the cluster (default: "+EnvUser+", USERNAME or USER)")
	pf.StringVarP(&g.password, "password", "p", "", "Password as --password=VALUE; -p alone prompts for it (default: keyring)")
	pf.Lookup("password").NoOptDefVal = promptSentinel
	pf.BoolVar(&g.insecure, "insecure", false, "Skip TLS certificate verification")
	pf.DurationVar(&g.requestTimeout, "request-timeout", app.DefaultRequestTimeout, "Timeout of a single gateway request")
	pf.StringVar(&g.profile, "profile", "", "Name of the session profile to use")
	pf.StringVar(&g.profileFile, "profile-file", "", "HCL profile file or directory (env "+EnvProfileFile+")")
	pf.StringVar(&g.envFile, "env-file", ".env", "File with environment defaults")
	pf.DurationVar(&g.pollInterval, "poll-interval", app.DefaultPollInterval, "Time between two status polls")
	pf.DurationVar(&g.sessionDeadline, "session-deadline", app.DefaultSessionDeadline, "How long to wait for a session to become idle")
	pf.DurationVar(&g.statementDeadline, "statement-deadline", app.DefaultStatementDeadline, "How long to wait for a statement to finish")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable spinner and colors")

	root.AddCommand(
		newSubmitCommand(g, env),
		newSessionsCommand(g, env),
		newInfoCommand(g, env),
		newDeleteCommand(g, env),
		newStatementCommand(g, env, "status", "Follow the progress of a statement", func(a *app.App, ctx context.Context, sid, stid int, _ string) error {
			return a.Status(ctx, sid, stid)
		}),
		newStatementCommand(g, env, "code", "Show the code of a statement", (*app.App).Code),
		newStatementCommand(g, env, "output", "Show the output of a statement", (*app.App).Output),
	)
	return root
}

// newApp resolves flags, the environment and the .env file into an App.
func (g *globalFlags) newApp(ctx context.Context, env Env) (*app.App, error) {
	dotenv, err := godotenv.Read(g.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, usageError(fmt.Errorf("reading %s: %w", g.envFile, err))
	}
	lookup := func(keys ...string) string {
		for _, k := range keys {
			if v := env.Getenv(k); v != "" {
				return v
			}
			if v := dotenv[k]; v != "" {
				return v
			}
		}
		return ""
	}

	url := g.url
	if url == "" {
		url = lookup(EnvURL)
	}
	user := g.username
	if user == "" {
		user = lookup(EnvUser, "USERNAME", "USER")
	}
	var profileFiles []string
	if pf := g.profileFile; pf != "" {
		profileFiles = append(profileFiles, pf)
	} else if pf := lookup(EnvProfileFile); pf != "" {
		profileFiles = append(profileFiles, pf)
	}

	cfg, err := app.NewConfig(app.Config{
		URL:               url,
		User:              user,
		Insecure:          g.insecure,
		RequestTimeout:    g.requestTimeout,
		ProfileFiles:      profileFiles,
		ProfileName:       g.profile,
		PollInterval:      g.pollInterval,
		SessionDeadline:   g.sessionDeadline,
		StatementDeadline: g.statementDeadline,
		LogFormat:         strings.ToLower(g.logFormat),
		LogLevel:          strings.ToLower(g.logLevel),
		Interactive:       env.Interactive && !g.noColor,
	})
	if err != nil {
		return nil, usageError(err)
	}

	var opts []app.Option
	if env.Clock != nil {
		opts = append(opts, app.WithClock(env.Clock))
	}
	return app.NewApp(ctx, env.Stdout, env.Stderr, cfg, hcl_adapter.NewLoader(), g.credentials(env), opts...)
}

func (g *globalFlags) credentials(env Env) credentials.Provider {
	prompt := credentials.Prompt{In: env.Stdin, Out: env.Stderr}
	switch {
	case g.password == promptSentinel:
		return prompt
	case g.password != "":
		return credentials.Static(g.password)
	case env.Credentials != nil:
		return env.Credentials
	}
	return credentials.Chain{credentials.Keyring{}, prompt}
}

func newSessionsCommand(g *globalFlags, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the running sessions",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.newApp(cmd.Context(), env)
			if err != nil {
				return err
			}
			return a.Sessions(cmd.Context())
		},
	}
}

func newInfoCommand(g *globalFlags, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "info SESSION_ID",
		Short: "Show a session, its statements and its log",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := g.newApp(cmd.Context(), env)
			if err != nil {
				return err
			}
			return a.Info(cmd.Context(), ids[0])
		},
	}
}

func newDeleteCommand(g *globalFlags, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete SESSION_ID",
		Short: "Delete a running session",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := g.newApp(cmd.Context(), env)
			if err != nil {
				return err
			}
			return a.Delete(cmd.Context(), ids[0])
		},
	}
}

type statementFunc func(a *app.App, ctx context.Context, sessionID, statementID int, outputFile string) error

func newStatementCommand(g *globalFlags, env Env, name, short string, fn statementFunc) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   name + " SESSION_ID STATEMENT_ID",
		Short: short,
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := g.newApp(cmd.Context(), env)
			if err != nil {
				return err
			}
			return fn(a, cmd.Context(), ids[0], ids[1], outputFile)
		},
	}
	if name != "status" {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write to this file instead of the console")
	}
	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id < 0 {
			return nil, usageError(fmt.Errorf("invalid id %q: must be a non-negative integer", a))
		}
		ids[i] = id
	}
	return ids, nil
}
