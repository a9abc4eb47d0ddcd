package session

import (
	"strconv"

	"github.com/vk/livysubmit/internal/config"
	"github.com/vk/livysubmit/internal/gateway"
)

// Kind is the execution engine every created session runs.
const Kind = "pyspark"

const (
	confDynamicAllocation = "spark.dynamicAllocation.enabled"
	confMaxExecutors      = "spark.dynamicAllocation.maxExecutors"
	confMinExecutors      = "spark.dynamicAllocation.minExecutors"
	confShuffleService    = "spark.shuffle.service.enabled"
	confExecutorEnvPrefix = "spark.executorEnv."
	confMemoryOverhead    = "spark.yarn.executor.memoryOverhead"
)

// BuildCreateRequest turns a spec into the session-creation payload. Extra
// conf entries go in first so the dynamic-allocation and shuffle-service
// keys always carry the spec's values.
func BuildCreateRequest(spec *config.SessionSpec) *gateway.CreateSessionRequest {
	conf := make(map[string]string, len(spec.Conf)+len(spec.ExecutorEnv)+5)
	for k, v := range spec.Conf {
		conf[k] = v
	}
	for k, v := range spec.ExecutorEnv {
		conf[confExecutorEnvPrefix+k] = v
	}
	if spec.MemoryOverhead != "" {
		conf[confMemoryOverhead] = spec.MemoryOverhead
	}
	conf[confDynamicAllocation] = "true"
	conf[confMaxExecutors] = strconv.Itoa(spec.DynamicMaxExecutors)
	conf[confMinExecutors] = strconv.Itoa(spec.DynamicMinExecutors)
	conf[confShuffleService] = "true"

	req := &gateway.CreateSessionRequest{
		ProxyUser:      spec.ProxyUser,
		Name:           spec.Name,
		Kind:           Kind,
		NumExecutors:   spec.NumExecutors,
		ExecutorCores:  spec.ExecutorCores,
		ExecutorMemory: spec.ExecutorMemory,
		DriverCores:    spec.DriverCores,
		DriverMemory:   spec.DriverMemory,
		Conf:           conf,
	}
	if len(spec.PyFiles) > 0 {
		req.PyFiles = append([]string(nil), spec.PyFiles...)
	}
	if len(spec.Files) > 0 {
		req.Files = append([]string(nil), spec.Files...)
	}
	return req
}
