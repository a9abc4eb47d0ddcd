package gateway

// SessionState is the state of an interactive session as reported by the gateway.
type SessionState string

const (
	SessionNotStarted   SessionState = "not_started"
	SessionStarting     SessionState = "starting"
	SessionRecovering   SessionState = "recovering"
	SessionIdle         SessionState = "idle"
	SessionRunning      SessionState = "running"
	SessionBusy         SessionState = "busy"
	SessionShuttingDown SessionState = "shutting_down"
	SessionError        SessionState = "error"
	SessionDead         SessionState = "dead"
	SessionKilled       SessionState = "killed"
	SessionSuccess      SessionState = "success"
)

// IsReady reports whether the session can accept a new statement.
func (s SessionState) IsReady() bool { return s == SessionIdle }

// IsTerminalFailure reports whether the session ended abnormally.
func (s SessionState) IsTerminalFailure() bool {
	switch s {
	case SessionDead, SessionError, SessionKilled:
		return true
	}
	return false
}

// IsFinal reports whether the session can never become ready again.
func (s SessionState) IsFinal() bool {
	return s.IsTerminalFailure() || s == SessionShuttingDown || s == SessionSuccess
}

// StatementState is the state of a statement as reported by the gateway.
type StatementState string

const (
	StatementWaiting    StatementState = "waiting"
	StatementRunning    StatementState = "running"
	StatementAvailable  StatementState = "available"
	StatementError      StatementState = "error"
	StatementCancelling StatementState = "cancelling"
	StatementCancelled  StatementState = "cancelled"
)

// InProgress reports whether the statement may still change state.
func (s StatementState) InProgress() bool {
	switch s {
	case StatementWaiting, StatementRunning, StatementCancelling:
		return true
	}
	return false
}

// Session is an interactive session.
type Session struct {
	ID        int               `json:"id"`
	Name      string            `json:"name,omitempty"`
	AppID     string            `json:"appId,omitempty"`
	Owner     string            `json:"owner,omitempty"`
	ProxyUser string            `json:"proxyUser,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	State     SessionState      `json:"state"`
	AppInfo   map[string]string `json:"appInfo,omitempty"`
	Log       []string          `json:"log,omitempty"`
}

// SessionList is the body of GET /sessions.
type SessionList struct {
	From     int       `json:"from"`
	Total    int       `json:"total"`
	Sessions []Session `json:"sessions"`
}

// Find returns the session with the given id.
func (l *SessionList) Find(id int) (*Session, bool) {
	for i := range l.Sessions {
		if l.Sessions[i].ID == id {
			return &l.Sessions[i], true
		}
	}
	return nil, false
}

// Statement is one unit of code executed inside a session.
type Statement struct {
	ID        int            `json:"id"`
	Code      string         `json:"code,omitempty"`
	State     StatementState `json:"state"`
	Progress  float64        `json:"progress"`
	Output    *Output        `json:"output,omitempty"`
	Started   int64          `json:"started,omitempty"`
	Completed int64          `json:"completed,omitempty"`
}

// StatementList is the body of GET /sessions/{id}/statements.
type StatementList struct {
	TotalStatements int         `json:"total_statements"`
	Statements      []Statement `json:"statements"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	ProxyUser      string            `json:"proxyUser,omitempty"`
	Name           string            `json:"name,omitempty"`
	Kind           string            `json:"kind"`
	NumExecutors   int               `json:"numExecutors,omitempty"`
	ExecutorCores  int               `json:"executorCores,omitempty"`
	ExecutorMemory string            `json:"executorMemory,omitempty"`
	DriverCores    int               `json:"driverCores,omitempty"`
	DriverMemory   string            `json:"driverMemory,omitempty"`
	Conf           map[string]string `json:"conf,omitempty"`
	PyFiles        []string          `json:"pyFiles,omitempty"`
	Files          []string          `json:"files,omitempty"`
}

// StatementRequest is the body of POST /sessions/{id}/statements.
type StatementRequest struct {
	Code string `json:"code"`
}
