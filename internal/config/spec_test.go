package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validSpec() SessionSpec {
	s := DefaultSessionSpec()
	s.ProxyUser = "alice"
	return s
}

func TestNewSessionSpec_Defaults(t *testing.T) {
	t.Parallel()

	spec, err := NewSessionSpec(validSpec())

	require.NoError(t, err)
	require.Equal(t, 10, spec.NumExecutors)
	require.Equal(t, 4, spec.ExecutorCores)
	require.Equal(t, "32g", spec.ExecutorMemory)
	require.Equal(t, 4, spec.DriverCores)
	require.Equal(t, "32g", spec.DriverMemory)
	require.Equal(t, 50, spec.DynamicMaxExecutors)
	require.Equal(t, 6, spec.DynamicMinExecutors)
}

func TestNewSessionSpec_CopiesCollections(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in := validSpec()
	in.ExecutorEnv = map[string]string{"A": "1"}
	in.Files = []string{"f1"}

	// --- Act ---
	spec, err := NewSessionSpec(in)
	require.NoError(t, err)
	in.ExecutorEnv["A"] = "changed"
	in.Files[0] = "changed"

	// --- Assert ---
	require.Equal(t, "1", spec.ExecutorEnv["A"])
	require.Equal(t, "f1", spec.Files[0])
}

func TestNewSessionSpec_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*SessionSpec)
		wantErr string
	}{
		{name: "missing user", mutate: func(s *SessionSpec) { s.ProxyUser = "" }, wantErr: "proxy user is required"},
		{name: "zero executors", mutate: func(s *SessionSpec) { s.NumExecutors = 0 }, wantErr: "num executors must be positive"},
		{name: "negative driver cores", mutate: func(s *SessionSpec) { s.DriverCores = -1 }, wantErr: "driver cores must be positive"},
		{name: "min above max", mutate: func(s *SessionSpec) { s.DynamicMinExecutors = 60 }, wantErr: "must not be below the minimum"},
		{name: "bad memory", mutate: func(s *SessionSpec) { s.DriverMemory = "lots" }, wantErr: `driver memory "lots"`},
		{name: "bad overhead", mutate: func(s *SessionSpec) { s.MemoryOverhead = "2 GB" }, wantErr: "memory overhead"},
		{name: "bad env key", mutate: func(s *SessionSpec) { s.ExecutorEnv = map[string]string{"1X": "v"} }, wantErr: `executor env key "1X"`},
		{name: "empty conf key", mutate: func(s *SessionSpec) { s.Conf = map[string]string{" ": "v"} }, wantErr: "conf keys must not be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := validSpec()
			tc.mutate(&s)

			_, err := NewSessionSpec(s)

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewSessionSpec_ErrorOrderIsStable(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := validSpec()
	s.NumExecutors = 0
	s.ExecutorCores = 0
	s.DriverCores = 0
	s.ExecutorMemory = "x"
	s.DriverMemory = "y"
	s.ExecutorEnv = map[string]string{"9B": "v", "1A": "v", "5C": "v"}
	want := "invalid session spec: " + strings.Join([]string{
		"num executors must be positive, got 0",
		"executor cores must be positive, got 0",
		"driver cores must be positive, got 0",
		`executor memory "x" is not a memory size such as 4g or 512m`,
		`driver memory "y" is not a memory size such as 4g or 512m`,
		`executor env key "1A" is not a valid variable name`,
		`executor env key "5C" is not a valid variable name`,
		`executor env key "9B" is not a valid variable name`,
	}, "\n")

	// --- Act & Assert ---
	for range 20 {
		_, err := NewSessionSpec(s)
		require.EqualError(t, err, want)
	}
}

func TestProfile_Apply(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	mem := "8g"
	execs := 3
	base := validSpec()
	base.Conf = map[string]string{"a": "base", "b": "base"}
	p := &Profile{
		Name:           "small",
		ExecutorMemory: &mem,
		NumExecutors:   &execs,
		Conf:           map[string]string{"b": "profile"},
		PyFiles:        []string{"lib.zip"},
	}

	// --- Act ---
	got := p.Apply(base)

	// --- Assert ---
	require.Equal(t, "8g", got.ExecutorMemory)
	require.Equal(t, 3, got.NumExecutors)
	require.Equal(t, "32g", got.DriverMemory, "unset profile fields keep the base value")
	require.Equal(t, map[string]string{"a": "base", "b": "profile"}, got.Conf)
	require.Equal(t, []string{"lib.zip"}, got.PyFiles)
	require.Equal(t, "base", base.Conf["b"], "the base spec is not modified")

	var nilProfile *Profile
	require.Equal(t, base, nilProfile.Apply(base))
}
