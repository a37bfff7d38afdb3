package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/bundlecfg/config"
)

// FileSource loads settings from YAML files on the filesystem.
//
// FileSource reads a base file and an optional profile-specific overlay.
// Both .yaml and .yml extensions are supported.
//
// File loading order:
//  1. Load application.yaml (or application.yml) from BasePath
//  2. If Profile is set, merge application.{profile}.yaml on top with
//     config.Merge: nested mappings merge key by key, sequences concatenate
//     and scalars from the profile win
//
// Example directory structure:
//
//	configs/
//	  application.yaml      # Base settings
//	  application.dev.yaml  # Development profile
//	  application.prod.yaml # Production profile
type FileSource struct {
	// BasePath is the directory containing the configuration files.
	// The base file (application.yaml) must exist in this directory.
	BasePath string

	// Profile specifies an optional configuration profile. A missing
	// profile file is silently ignored; a malformed one is an error.
	Profile string

	// Optional makes a missing base file load as an empty map.
	Optional bool
}

// Name returns the identifier for this source.
func (f *FileSource) Name() string { return "file" }

// Load reads the base file and the profile overlay.
//
// Returns an error wrapping os.ErrNotExist if the base file is not found
// and the source is not Optional,
// a YAML parsing error if either file is malformed, and
// config.ErrMalformedInput if their contents cannot be merged.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baseFile := findYAMLFile(f.BasePath, "application")
	if baseFile == "" {
		if f.Optional {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("application.yaml in %q: %w", f.BasePath, os.ErrNotExist)
	}

	data, err := readDocument(baseFile)
	if err != nil {
		return nil, err
	}

	if f.Profile == "" {
		return data, nil
	}

	profileFile := findYAMLFile(f.BasePath, "application."+f.Profile)
	if profileFile == "" {
		return data, nil
	}

	overlay, err := readDocument(profileFile)
	if err != nil {
		return nil, err
	}
	return config.MergeMaps(data, overlay)
}

// Watch is not implemented for FileSource and returns nil immediately.
func (f *FileSource) Watch(ctx context.Context, ch chan<- config.Event) error { return nil }

// findYAMLFile looks for a file with either .yaml or .yml extension
func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// readDocument parses a YAML or JSON file into a map. An empty file yields
// an empty map.
//
// .json files are decoded as JSON. Anything else is decoded as YAML, and
// content that YAML rejects but that looks like a JSON object is retried as
// JSON, since yaml.v3 refuses some valid JSON (the \/ escape, repeated keys).
func readDocument(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if out, err = decodeJSON(b); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(b, &out); err != nil {
		if !looksLikeJSON(b) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if out, err = decodeJSON(b); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func looksLikeJSON(b []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(b), []byte("{"))
}

// decodeJSON decodes a JSON object. Repeated keys keep the last value.
// Integral numbers become int64 and the rest float64, matching what
// config.FromAny produces.
func decodeJSON(b []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}
	return normalizeNumbers(out).(map[string]any), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
