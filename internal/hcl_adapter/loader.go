package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/livysubmit/internal/config"
	"github.com/vk/livysubmit/internal/ctxlog"
	"github.com/vk/livysubmit/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL profile loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and returns the profiles they
// declare, keyed by name. Declaring the same profile twice is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (map[string]*config.Profile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL profile loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	profiles := make(map[string]*config.Profile)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Profiles {
			if prev, ok := profiles[block.Name]; ok {
				return nil, fmt.Errorf("profile %q declared in both %s and %s", block.Name, prev.Source, file)
			}
			p, err := translateProfile(file, block)
			if err != nil {
				return nil, err
			}
			profiles[p.Name] = p
		}
	}

	logger.Debug("HCL profile loading complete.", "profiles", len(profiles))
	return profiles, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing profile path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) != ".hcl" {
				return nil, fmt.Errorf("profile file %s must have the .hcl extension", path)
			}
			add(path)
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
