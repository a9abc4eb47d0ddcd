package config

// Profile is a named, partial set of session settings. Nil fields are left
// to the defaults or to command-line flags.
type Profile struct {
	Name                string
	Source              string
	NumExecutors        *int
	ExecutorCores       *int
	ExecutorMemory      *string
	DriverCores         *int
	DriverMemory        *string
	DynamicMaxExecutors *int
	DynamicMinExecutors *int
	MemoryOverhead      *string
	ExecutorEnv         map[string]string
	Conf                map[string]string
	Files               []string
	PyFiles             []string
}

// Apply overlays the profile onto spec and returns the result. Maps are
// merged with profile keys winning; lists replace.
func (p *Profile) Apply(spec SessionSpec) SessionSpec {
	if p == nil {
		return spec
	}
	setInt(&spec.NumExecutors, p.NumExecutors)
	setInt(&spec.ExecutorCores, p.ExecutorCores)
	setString(&spec.ExecutorMemory, p.ExecutorMemory)
	setInt(&spec.DriverCores, p.DriverCores)
	setString(&spec.DriverMemory, p.DriverMemory)
	setInt(&spec.DynamicMaxExecutors, p.DynamicMaxExecutors)
	setInt(&spec.DynamicMinExecutors, p.DynamicMinExecutors)
	setString(&spec.MemoryOverhead, p.MemoryOverhead)

	spec.ExecutorEnv = mergeMaps(spec.ExecutorEnv, p.ExecutorEnv)
	spec.Conf = mergeMaps(spec.Conf, p.Conf)
	if p.Files != nil {
		spec.Files = append([]string(nil), p.Files...)
	}
	if p.PyFiles != nil {
		spec.PyFiles = append([]string(nil), p.PyFiles...)
	}
	return spec
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
