package session

import (
	"context"
	"errors"
	"time"

	"github.com/vk/livysubmit/internal/config"
	"github.com/vk/livysubmit/internal/ctxlog"
	"github.com/vk/livysubmit/internal/gateway"
	"github.com/vk/livysubmit/internal/poll"
	"k8s.io/utils/clock"
)

// DefaultCleanupTimeout bounds a best-effort delete.
const DefaultCleanupTimeout = 30 * time.Second

// Gateway is the subset of the gateway client the manager needs.
type Gateway interface {
	ListSessions(ctx context.Context) (*gateway.SessionList, error)
	GetSession(ctx context.Context, id int) (*gateway.Session, error)
	CreateSession(ctx context.Context, req *gateway.CreateSessionRequest) (*gateway.Session, error)
	DeleteSession(ctx context.Context, id int) error
}

// Target selects how Ensure obtains a session: attach to AttachID when set,
// otherwise create one from Spec.
type Target struct {
	AttachID *int
	Spec     *config.SessionSpec
}

// Handle identifies the session an invocation owns.
type Handle struct {
	ID       int
	Attached bool
	// Session is the last observed snapshot.
	Session gateway.Session
}

// Manager drives session creation, readiness and teardown.
type Manager struct {
	gw             Gateway
	clock          clock.Clock
	cleanupTimeout time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for polling.
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) { m.clock = clk }
}

// WithCleanupTimeout bounds each best-effort delete.
func WithCleanupTimeout(d time.Duration) Option {
	return func(m *Manager) { m.cleanupTimeout = d }
}

// NewManager returns a Manager backed by gw.
func NewManager(gw Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:             gw,
		clock:          clock.RealClock{},
		cleanupTimeout: DefaultCleanupTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure attaches to target.AttachID or creates a new session from
// target.Spec. Attaching only checks that the session exists and has not
// failed; an attached session is never deleted by the manager.
func (m *Manager) Ensure(ctx context.Context, target Target) (*Handle, error) {
	logger := ctxlog.FromContext(ctx)

	if target.AttachID != nil {
		id := *target.AttachID
		list, err := m.gw.ListSessions(ctx)
		if err != nil {
			return nil, err
		}
		s, ok := list.Find(id)
		if !ok {
			return nil, &SessionNotFoundError{ID: id}
		}
		if s.State.IsTerminalFailure() {
			return nil, &SessionFailedError{ID: id, ObservedState: s.State, Log: s.Log}
		}
		logger.Info("Connecting to existing session.", "session_id", id, "state", s.State)
		return &Handle{ID: id, Attached: true, Session: *s}, nil
	}

	if target.Spec == nil {
		return nil, errors.New("session: a spec is required to create a session")
	}
	s, err := m.gw.CreateSession(ctx, BuildCreateRequest(target.Spec))
	if err != nil {
		return nil, err
	}
	logger.Info("Started session.", "session_id", s.ID, "state", s.State)
	return &Handle{ID: s.ID, Session: *s}, nil
}

// AwaitReady polls the session every interval until it is idle. A session
// that can no longer become ready is deleted (best effort) and reported as
// *SessionFailedError; running out of time yields *SessionTimeoutError and
// leaves the session alone. onPoll, when set, sees every snapshot.
func (m *Manager) AwaitReady(ctx context.Context, id int, interval, deadline time.Duration, onPoll func(*gateway.Session)) (*gateway.Session, error) {
	s, err := m.AwaitIdle(ctx, id, interval, deadline, onPoll)
	var failed *SessionFailedError
	if errors.As(err, &failed) {
		ctxlog.FromContext(ctx).Warn("Session ended up in a terminal state, cleaning up stale session.", "session_id", id, "state", failed.ObservedState)
		m.Delete(ctx, id)
	}
	return s, err
}

// AwaitIdle is AwaitReady without the cleanup: a session that fails while
// waiting is reported but left for its owner. Use it for sessions this
// invocation did not create.
func (m *Manager) AwaitIdle(ctx context.Context, id int, interval, deadline time.Duration, onPoll func(*gateway.Session)) (*gateway.Session, error) {
	ctx, logger := ctxlog.With(ctx, "session_id", id)
	logger.Debug("Waiting for session to become idle.", "interval", interval, "deadline", deadline)

	var last *gateway.Session
	err := poll.Until(ctx, poll.Options{Interval: interval, Deadline: deadline, Clock: m.clock}, func(ctx context.Context) (bool, error) {
		s, err := m.gw.GetSession(ctx, id)
		if err != nil {
			return false, err
		}
		last = s
		if onPoll != nil {
			onPoll(s)
		}
		logger.Debug("Session polled.", "state", s.State)

		switch {
		case s.State.IsReady():
			return true, nil
		case s.State.IsFinal():
			return false, &SessionFailedError{ID: id, ObservedState: s.State, Log: s.Log}
		}
		return false, nil
	})
	if err == nil {
		logger.Info("Session is ready.")
		return last, nil
	}

	var gwErr *gateway.GatewayError
	if errors.As(err, &gwErr) {
		return nil, err
	}
	if poll.IsTimeout(ctx, err) {
		var lastState gateway.SessionState
		if last != nil {
			lastState = last.State
		}
		return nil, &SessionTimeoutError{ID: id, Deadline: deadline, LastState: lastState}
	}
	return nil, err
}

// Delete stops a session on a best-effort basis. It runs even when ctx is
// already cancelled, treats a missing session as deleted, and only logs
// failures.
func (m *Manager) Delete(ctx context.Context, id int) {
	logger := ctxlog.FromContext(ctx).With("session_id", id)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cleanupTimeout)
	defer cancel()

	err := m.gw.DeleteSession(ctx, id)
	switch {
	case err == nil:
		logger.Info("Session deleted.")
	case gateway.IsNotFound(err):
		logger.Debug("Session was already gone.")
	default:
		logger.Warn("Failed to delete session; it may need to be removed manually.", "error", err)
	}
}
