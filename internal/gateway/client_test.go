package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/livysubmit/internal/credentials"
	"github.com/vk/livysubmit/internal/ctxlog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{URL: srv.URL + "/", User: "alice"}, credentials.Static("pw"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestNew_RequiresPassword(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{URL: "http://livy:8998", User: "alice"}, credentials.Static(""))

	var missing *credentials.AuthenticationMissingError
	require.ErrorAs(t, err, &missing)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{URL: "livy:8998", User: "alice"}, credentials.Static("pw"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid URL")
}

func TestClient_SendsAuthAndHeaders(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Requested-By") != "alice" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"from":0,"total":1,"sessions":[{"id":3,"proxyUser":"alice","state":"idle","kind":"pyspark"}]}`)
	})

	// --- Act ---
	list, err := c.ListSessions(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	s, ok := list.Find(3)
	require.True(t, ok)
	require.Equal(t, SessionIdle, s.State)
	require.Equal(t, "alice", s.ProxyUser)
	_, ok = list.Find(4)
	require.False(t, ok)
}

func TestClient_CreateSessionPayload(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":11,"state":"starting","kind":"pyspark"}`)
	})

	// --- Act ---
	s, err := c.CreateSession(context.Background(), &CreateSessionRequest{
		ProxyUser: "alice",
		Kind:      "pyspark",
		Conf:      map[string]string{"spark.dynamicAllocation.enabled": "true"},
		PyFiles:   []string{"hdfs:///lib.zip"},
	})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 11, s.ID)
	require.Equal(t, SessionStarting, s.State)
	require.Equal(t, "pyspark", got["kind"])
	require.Equal(t, []any{"hdfs:///lib.zip"}, got["pyFiles"])
	require.NotContains(t, got, "files", "empty optional lists are omitted")
}

func TestClient_StatementRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/sessions/2/statements":
			var req StatementRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "1+6", req.Code)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":0,"code":"1+6","state":"waiting","progress":0.0,"output":null}`)
		case r.Method == http.MethodGet && r.URL.Path == "/sessions/2/statements/0":
			_, _ = io.WriteString(w, `{"id":0,"state":"available","progress":1.0,"output":{"status":"ok","execution_count":0,"data":{"text/plain":"7","application/json":{"v":7},"text/html":"<b>7</b>"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	st, err := c.PostStatement(context.Background(), 2, "1+6")
	require.NoError(t, err)
	require.Equal(t, StatementWaiting, st.State)
	require.Nil(t, st.Output)

	st, err = c.GetStatement(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Equal(t, StatementAvailable, st.State)
	require.NotNil(t, st.Output)
	require.Equal(t, MimeBundle{
		{Type: "text/plain", Value: "7"},
		{Type: "application/json", Value: `{"v":7}`},
		{Type: "text/html", Value: "<b>7</b>"},
	}, st.Output.Data, "mime order must follow the response")
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantNotFnd bool
	}{
		{name: "not found", status: http.StatusNotFound, body: `"Session '9' not found."`, wantStatus: 404, wantNotFnd: true},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantStatus: 500},
		{name: "malformed json", status: http.StatusOK, body: `{"id":`, wantStatus: 200},
		{name: "unknown output status", status: http.StatusOK, body: `{"id":1,"state":"available","output":{"status":"weird"}}`, wantStatus: 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := c.GetStatement(context.Background(), 9, 1)

			var gwErr *GatewayError
			require.ErrorAs(t, err, &gwErr)
			require.Equal(t, tc.wantStatus, gwErr.Status)
			require.Equal(t, tc.wantNotFnd, IsNotFound(err))
		})
	}
}

func TestClient_NoImplicitRetry(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	// --- Act ---
	err := c.DeleteSession(context.Background(), 1)

	// --- Assert ---
	require.Error(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	// --- Act ---
	_, err := c.GetSession(context.Background(), 1)

	// --- Assert ---
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Zero(t, gwErr.Status)
	require.NotNil(t, gwErr.Err)
	require.Contains(t, err.Error(), "get session 1")
}

func TestNew_RoutesRestyWarningsThroughSlog(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"from":0,"total":0,"sessions":[]}`)
	}))
	t.Cleanup(srv.Close)
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	c, err := New(ctx, Config{URL: srv.URL, User: "alice"}, credentials.Static("pw"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	// --- Act ---
	_, err = c.ListSessions(ctx)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"component":"resty"`)
	require.Contains(t, buf.String(), "sensitive credentials")
}

func TestRestyLogger_Levels(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	l := restyLogger{logger: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))}

	l.Debugf("dropped %d", 1)
	l.Warnf("careful %s\n", "now")
	l.Errorf("broken")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), `level=WARN msg="careful now" component=resty`)
	require.Contains(t, buf.String(), "level=ERROR msg=broken component=resty")
}
