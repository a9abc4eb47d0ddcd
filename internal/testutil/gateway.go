package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/vk/livysubmit/internal/gateway"
)

// FakeGateway is an in-memory, scriptable stand-in for the gateway client.
// It records every call. The zero value is not usable; call NewFakeGateway.
type FakeGateway struct {
	mu sync.Mutex

	// Sessions is what ListSessions returns.
	Sessions []gateway.Session
	// SessionStates scripts successive GetSession results. The last state
	// repeats once the script runs out.
	SessionStates []gateway.SessionState
	// StatementPolls scripts successive GetStatement results. The last
	// entry repeats once the script runs out.
	StatementPolls []gateway.Statement
	// Errors injects a failure for an operation, keyed by method name.
	Errors map[string]error

	NextSessionID   int
	NextStatementID int

	Created []*gateway.CreateSessionRequest
	Posted  []string
	Deleted []int
	calls   map[string]int
}

// NewFakeGateway returns an empty fake.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Errors: make(map[string]error),
		calls:  make(map[string]int),
	}
}

// Calls returns how many times op was invoked.
func (f *FakeGateway) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// DeletedIDs returns a copy of the ids passed to DeleteSession.
func (f *FakeGateway) DeletedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.Deleted...)
}

// CreatedRequests returns a copy of the payloads passed to CreateSession.
func (f *FakeGateway) CreatedRequests() []*gateway.CreateSessionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*gateway.CreateSessionRequest(nil), f.Created...)
}

// PostedCode returns a copy of the code passed to PostStatement.
func (f *FakeGateway) PostedCode() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Posted...)
}

// NotFound builds the error the real client returns for a 404.
func NotFound(op string) error {
	return &gateway.GatewayError{Op: op, Status: http.StatusNotFound, Body: "not found"}
}

func (f *FakeGateway) enter(op string) error {
	f.calls[op]++
	return f.Errors[op]
}

// ListSessions implements the gateway client method of the same name.
func (f *FakeGateway) ListSessions(context.Context) (*gateway.SessionList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListSessions"); err != nil {
		return nil, err
	}
	sessions := append([]gateway.Session(nil), f.Sessions...)
	return &gateway.SessionList{Total: len(sessions), Sessions: sessions}, nil
}

// GetSession implements the gateway client method of the same name.
func (f *FakeGateway) GetSession(_ context.Context, id int) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSession"); err != nil {
		return nil, err
	}

	if len(f.SessionStates) > 0 {
		n := f.calls["GetSession"] - 1
		if n >= len(f.SessionStates) {
			n = len(f.SessionStates) - 1
		}
		return &gateway.Session{ID: id, Kind: "pyspark", State: f.SessionStates[n]}, nil
	}
	for _, s := range f.Sessions {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, NotFound(fmt.Sprintf("get session %d", id))
}

// CreateSession implements the gateway client method of the same name.
func (f *FakeGateway) CreateSession(_ context.Context, req *gateway.CreateSessionRequest) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateSession"); err != nil {
		return nil, err
	}
	f.Created = append(f.Created, req)
	s := gateway.Session{ID: f.NextSessionID, Kind: req.Kind, ProxyUser: req.ProxyUser, Name: req.Name, State: gateway.SessionStarting}
	f.Sessions = append(f.Sessions, s)
	f.NextSessionID++
	return &s, nil
}

// DeleteSession implements the gateway client method of the same name.
func (f *FakeGateway) DeleteSession(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, id)
	return f.enter("DeleteSession")
}

// ListStatements implements the gateway client method of the same name.
func (f *FakeGateway) ListStatements(context.Context, int) (*gateway.StatementList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListStatements"); err != nil {
		return nil, err
	}
	var list gateway.StatementList
	if n := len(f.StatementPolls); n > 0 {
		list.Statements = []gateway.Statement{f.StatementPolls[n-1]}
		list.TotalStatements = 1
	}
	return &list, nil
}

// GetStatement implements the gateway client method of the same name.
func (f *FakeGateway) GetStatement(_ context.Context, sessionID, id int) (*gateway.Statement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetStatement"); err != nil {
		return nil, err
	}
	if len(f.StatementPolls) == 0 {
		return nil, NotFound(fmt.Sprintf("get statement %d of session %d", id, sessionID))
	}
	n := f.calls["GetStatement"] - 1
	if n >= len(f.StatementPolls) {
		n = len(f.StatementPolls) - 1
	}
	st := f.StatementPolls[n]
	st.ID = id
	return &st, nil
}

// PostStatement implements the gateway client method of the same name.
func (f *FakeGateway) PostStatement(_ context.Context, _ int, code string) (*gateway.Statement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PostStatement"); err != nil {
		return nil, err
	}
	f.Posted = append(f.Posted, code)
	st := gateway.Statement{ID: f.NextStatementID, Code: code, State: gateway.StatementWaiting}
	f.NextStatementID++
	return &st, nil
}

// OkStatement builds a completed statement with a successful output.
func OkStatement(data ...gateway.MimeEntry) gateway.Statement {
	return gateway.Statement{
		State:    gateway.StatementAvailable,
		Progress: 1,
		Output:   &gateway.Output{Status: gateway.OutputOK, Data: data},
	}
}

// ErrorStatement builds a completed statement whose code raised.
func ErrorStatement(name, value string, traceback ...string) gateway.Statement {
	return gateway.Statement{
		State:    gateway.StatementAvailable,
		Progress: 1,
		Output: &gateway.Output{
			Status:     gateway.OutputError,
			ErrorName:  name,
			ErrorValue: value,
			Traceback:  traceback,
		},
	}
}

// RunningStatement builds an in-progress statement.
func RunningStatement(progress float64) gateway.Statement {
	return gateway.Statement{State: gateway.StatementRunning, Progress: progress}
}
