package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/livysubmit/internal/ctxlog"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

// DefaultService is the keyring service name passwords are stored under.
const DefaultService = "livysubmit"

// Provider resolves the password for a user.
type Provider interface {
	Password(ctx context.Context, user string) (string, error)
}

// AuthenticationMissingError reports that no provider could resolve a password.
type AuthenticationMissingError struct {
	User string
	Err  error
}

func (e *AuthenticationMissingError) Error() string {
	msg := fmt.Sprintf("no password available for user %q; pass --password or store one with \"keyring set %s %s\"", e.User, DefaultService, e.User)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthenticationMissingError) Unwrap() error { return e.Err }

// Static returns a fixed password. An empty Static resolves nothing.
type Static string

// Password implements Provider.
func (s Static) Password(_ context.Context, user string) (string, error) {
	if s == "" {
		return "", &AuthenticationMissingError{User: user}
	}
	return string(s), nil
}

// Keyring reads the password from the operating system keyring.
type Keyring struct {
	Service string
}

// Password implements Provider.
func (k Keyring) Password(ctx context.Context, user string) (string, error) {
	service := k.Service
	if service == "" {
		service = DefaultService
	}
	secret, err := keyring.Get(service, user)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			ctxlog.FromContext(ctx).Debug("Keyring lookup failed.", "service", service, "error", err)
		}
		return "", &AuthenticationMissingError{User: user, Err: err}
	}
	return secret, nil
}

// Prompt asks for the password on an interactive terminal.
type Prompt struct {
	In  *os.File
	Out io.Writer
}

// Password implements Provider.
func (p Prompt) Password(_ context.Context, user string) (string, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", &AuthenticationMissingError{User: user, Err: errors.New("stdin is not a terminal")}
	}

	fmt.Fprintf(out, "Password for %s: ", user)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", &AuthenticationMissingError{User: user, Err: err}
	}
	if len(secret) == 0 {
		return "", &AuthenticationMissingError{User: user}
	}
	return string(secret), nil
}

// Chain tries each provider in order and returns the first password found.
// Errors other than AuthenticationMissingError stop the chain.
type Chain []Provider

// Password implements Provider.
func (c Chain) Password(ctx context.Context, user string) (string, error) {
	for _, p := range c {
		secret, err := p.Password(ctx, user)
		if err == nil {
			return secret, nil
		}
		var missing *AuthenticationMissingError
		if !errors.As(err, &missing) {
			return "", err
		}
	}
	return "", &AuthenticationMissingError{User: user}
}
