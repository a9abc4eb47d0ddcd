package hcl_adapter

import (
	"fmt"

	"github.com/vk/livysubmit/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateProfile converts the HCL-specific profile schema into the agnostic model.
func translateProfile(source string, b *profileBlock) (*config.Profile, error) {
	conf, err := confToStrings(b.Conf)
	if err != nil {
		return nil, fmt.Errorf("profile %q in %s: %w", b.Name, source, err)
	}

	return &config.Profile{
		Name:                b.Name,
		Source:              source,
		NumExecutors:        b.NumExecutors,
		ExecutorCores:       b.ExecutorCores,
		ExecutorMemory:      b.ExecutorMemory,
		DriverCores:         b.DriverCores,
		DriverMemory:        b.DriverMemory,
		DynamicMaxExecutors: b.DynamicMaxExecutors,
		DynamicMinExecutors: b.DynamicMinExecutors,
		MemoryOverhead:      b.MemoryOverhead,
		ExecutorEnv:         b.ExecutorEnv,
		Conf:                conf,
		Files:               b.Files,
		PyFiles:             b.PyFiles,
	}, nil
}

// confToStrings flattens the `conf` attribute into the string map the gateway
// expects. Values may be strings, numbers or bools.
func confToStrings(v cty.Value) (map[string]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("conf must be an object, got %s", ty.FriendlyName())
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("conf contains values that are not known until runtime")
	}

	out := make(map[string]string)
	for it := v.ElementIterator(); it.Next(); {
		k, elem := it.Element()
		key := k.AsString()
		if elem.IsNull() {
			return nil, fmt.Errorf("conf %q must not be null", key)
		}
		str, err := convert.Convert(elem, cty.String)
		if err != nil {
			return nil, fmt.Errorf("conf %q: %w", key, err)
		}
		out[key] = str.AsString()
	}
	return out, nil
}
