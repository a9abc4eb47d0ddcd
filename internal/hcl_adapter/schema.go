package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Profiles []*profileBlock `hcl:"profile,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// profileBlock mirrors a `profile "<name>" { ... }` block. Pointer fields
// stay nil when the attribute is absent.
type profileBlock struct {
	Name                string            `hcl:"name,label"`
	NumExecutors        *int              `hcl:"num_executors,optional"`
	ExecutorCores       *int              `hcl:"executor_cores,optional"`
	ExecutorMemory      *string           `hcl:"executor_memory,optional"`
	DriverCores         *int              `hcl:"driver_cores,optional"`
	DriverMemory        *string           `hcl:"driver_memory,optional"`
	DynamicMaxExecutors *int              `hcl:"dynamic_max_executors,optional"`
	DynamicMinExecutors *int              `hcl:"dynamic_min_executors,optional"`
	MemoryOverhead      *string           `hcl:"memory_overhead,optional"`
	ExecutorEnv         map[string]string `hcl:"executor_env,optional"`
	Conf                cty.Value         `hcl:"conf,optional"`
	Files               []string          `hcl:"files,optional"`
	PyFiles             []string          `hcl:"py_files,optional"`
}
