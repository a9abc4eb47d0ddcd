package config

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// SessionSpec describes the remote session to create. Build it with
// NewSessionSpec; the returned value owns copies of all maps and slices and
// is not modified afterwards.
type SessionSpec struct {
	ProxyUser           string
	Name                string
	NumExecutors        int
	ExecutorCores       int
	ExecutorMemory      string
	DriverCores         int
	DriverMemory        string
	DynamicMaxExecutors int
	DynamicMinExecutors int
	ExecutorEnv         map[string]string
	MemoryOverhead      string
	Conf                map[string]string
	Files               []string
	PyFiles             []string
}

// DefaultSessionSpec returns the settings used when neither a profile nor a
// flag says otherwise.
func DefaultSessionSpec() SessionSpec {
	return SessionSpec{
		NumExecutors:        10,
		ExecutorCores:       4,
		ExecutorMemory:      "32g",
		DriverCores:         4,
		DriverMemory:        "32g",
		DynamicMaxExecutors: 50,
		DynamicMinExecutors: 6,
	}
}

var (
	memoryPattern   = regexp.MustCompile(`^[0-9]+[kKmMgGtT]?[bB]?$`)
	overheadPattern = regexp.MustCompile(`^[0-9]+[kKmMgGtT]?$`)
	envKeyPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// NewSessionSpec validates spec and returns a deep copy of it.
func NewSessionSpec(spec SessionSpec) (*SessionSpec, error) {
	var errs []error
	if spec.ProxyUser == "" {
		errs = append(errs, errors.New("proxy user is required"))
	}
	for _, c := range []struct {
		name string
		v    int
	}{
		{"num executors", spec.NumExecutors},
		{"executor cores", spec.ExecutorCores},
		{"driver cores", spec.DriverCores},
	} {
		if c.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", c.name, c.v))
		}
	}
	if spec.DynamicMinExecutors < 0 {
		errs = append(errs, fmt.Errorf("dynamic min executors must not be negative, got %d", spec.DynamicMinExecutors))
	}
	if spec.DynamicMaxExecutors < spec.DynamicMinExecutors {
		errs = append(errs, fmt.Errorf("dynamic max executors (%d) must not be below the minimum (%d)", spec.DynamicMaxExecutors, spec.DynamicMinExecutors))
	}
	for _, c := range []struct {
		name string
		v    string
	}{
		{"executor memory", spec.ExecutorMemory},
		{"driver memory", spec.DriverMemory},
	} {
		if !memoryPattern.MatchString(c.v) {
			errs = append(errs, fmt.Errorf("%s %q is not a memory size such as 4g or 512m", c.name, c.v))
		}
	}
	if spec.MemoryOverhead != "" && !overheadPattern.MatchString(spec.MemoryOverhead) {
		errs = append(errs, fmt.Errorf("memory overhead %q is not a size in megabytes", spec.MemoryOverhead))
	}
	for _, k := range slices.Sorted(maps.Keys(spec.ExecutorEnv)) {
		if !envKeyPattern.MatchString(k) {
			errs = append(errs, fmt.Errorf("executor env key %q is not a valid variable name", k))
		}
	}
	for k := range spec.Conf {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, errors.New("conf keys must not be empty"))
			break
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid session spec: %w", err)
	}

	spec.ExecutorEnv = maps.Clone(spec.ExecutorEnv)
	spec.Conf = maps.Clone(spec.Conf)
	spec.Files = slices.Clone(spec.Files)
	spec.PyFiles = slices.Clone(spec.PyFiles)
	return &spec, nil
}
