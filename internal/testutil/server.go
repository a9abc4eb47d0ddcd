package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/vk/livysubmit/internal/gateway"
)

// GatewayServer serves a FakeGateway over the gateway's REST surface so the
// real client can be exercised end to end.
type GatewayServer struct {
	*httptest.Server
	Fake *FakeGateway

	mu    sync.Mutex
	users []string
}

// NewGatewayServer starts a server backed by fake and closes it on cleanup.
// Requests without the given basic credentials are rejected with 401.
func NewGatewayServer(t *testing.T, fake *FakeGateway, user, password string) *GatewayServer {
	t.Helper()

	s := &GatewayServer{Fake: fake}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, func() (any, error) { return fake.ListSessions(r.Context()) })
	})
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		var req gateway.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.reply(w, func() (any, error) { return fake.CreateSession(r.Context(), &req) })
	})
	mux.HandleFunc("GET /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, func() (any, error) { return fake.GetSession(r.Context(), pathInt(r, "id")) })
	})
	mux.HandleFunc("DELETE /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, func() (any, error) {
			return map[string]string{"msg": "deleted"}, fake.DeleteSession(r.Context(), pathInt(r, "id"))
		})
	})
	mux.HandleFunc("GET /sessions/{id}/statements", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, func() (any, error) { return fake.ListStatements(r.Context(), pathInt(r, "id")) })
	})
	mux.HandleFunc("POST /sessions/{id}/statements", func(w http.ResponseWriter, r *http.Request) {
		var req gateway.StatementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.reply(w, func() (any, error) { return fake.PostStatement(r.Context(), pathInt(r, "id"), req.Code) })
	})
	mux.HandleFunc("GET /sessions/{id}/statements/{stid}", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, func() (any, error) {
			return fake.GetStatement(r.Context(), pathInt(r, "id"), pathInt(r, "stid"))
		})
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != password {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		s.users = append(s.users, r.Header.Get("X-Requested-By"))
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// RequestedBy returns the X-Requested-By header of every authorized request.
func (s *GatewayServer) RequestedBy() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.users...)
}

func (s *GatewayServer) reply(w http.ResponseWriter, fn func() (any, error)) {
	body, err := fn()
	if err != nil {
		status := http.StatusInternalServerError
		var gwErr *gateway.GatewayError
		if errors.As(err, &gwErr) && gwErr.Status != 0 {
			status = gwErr.Status
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func pathInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.PathValue(name))
	return v
}
