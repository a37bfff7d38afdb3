package bundle

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
)

// Options translates cfg into esbuild build options. outdir is used when
// cfg names no output path. Unknown plugin kinds are logged to l and
// skipped.
func Options(cfg Config, outdir string, l zerolog.Logger) (api.BuildOptions, error) {
	opts := api.BuildOptions{
		Bundle:   true,
		LogLevel: api.LogLevelSilent,
		Define:   map[string]string{},
	}

	if cfg.Context != "" {
		dir, err := filepath.Abs(cfg.Context)
		if err != nil {
			return api.BuildOptions{}, fmt.Errorf("context %q: %w", cfg.Context, err)
		}
		opts.AbsWorkingDir = dir
	}

	entries, err := entryPoints(cfg.Entry)
	if err != nil {
		return api.BuildOptions{}, err
	}
	opts.EntryPointsAdvanced = entries

	dir := cond(cfg.Output.Path != "", cfg.Output.Path, outdir)
	switch name := cfg.Output.Filename; {
	case strings.Contains(name, "["):
		opts.Outdir = dir
		opts.EntryNames = strings.TrimSuffix(name, filepath.Ext(name))
	case name != "" && len(entries) == 1:
		opts.Outfile = filepath.Join(dir, name)
	default:
		opts.Outdir = dir
	}

	if env := nodeEnv(cfg.Mode); env != "" {
		opts.Define["process.env.NODE_ENV"] = strconv.Quote(env)
	}
	opts.Sourcemap = sourceMap(cfg.Devtool)

	var banners []string
	for i, p := range cfg.Plugins {
		switch p.Kind {
		case KindMinifier:
			opts.MinifyWhitespace = true
			opts.MinifyIdentifiers = boolOption(p.Options, "mangle", true)
			opts.MinifySyntax = boolOption(p.Options, "compress", true)
			if boolOption(p.Options, "produceSourceMap", false) && opts.Sourcemap == api.SourceMapNone {
				opts.Sourcemap = api.SourceMapLinked
			}
		case KindDefine:
			defs, err := definitions(p.Options)
			if err != nil {
				return api.BuildOptions{}, fmt.Errorf("plugins[%d]: %w", i, err)
			}
			for k, v := range defs {
				opts.Define[k] = v
			}
		case KindBanner:
			if text, ok := p.Options["banner"].(string); ok && text != "" {
				banners = append(banners, text)
			}
		default:
			l.Warn().Str("kind", p.Kind).Int("index", i).Msg("skipping unsupported plugin")
		}
	}
	if len(banners) > 0 {
		opts.Banner = map[string]string{"js": strings.Join(banners, "\n")}
	}

	return opts, nil
}

func entryPoints(entry any) ([]api.EntryPoint, error) {
	switch e := entry.(type) {
	case string:
		if e == "" {
			break
		}
		return []api.EntryPoint{{InputPath: e}}, nil
	case []any:
		out := make([]api.EntryPoint, 0, len(e))
		for i, v := range e {
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("entry[%d]: expected a path, got %T", i, v)
			}
			out = append(out, api.EntryPoint{InputPath: s})
		}
		if len(out) > 0 {
			return out, nil
		}
	case map[string]any:
		names := make([]string, 0, len(e))
		for name := range e {
			names = append(names, name)
		}
		sort.Strings(names)

		out := make([]api.EntryPoint, 0, len(e))
		for _, name := range names {
			path, err := singlePath(e[name])
			if err != nil {
				return nil, fmt.Errorf("entry.%s: %w", name, err)
			}
			out = append(out, api.EntryPoint{InputPath: path, OutputPath: name})
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, errors.New("no entry points configured")
}

func singlePath(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []any:
		if len(t) != 1 {
			return "", fmt.Errorf("expected exactly one path, got %d", len(t))
		}
		if s, ok := t[0].(string); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("expected a path, got %T", v)
}

func nodeEnv(mode string) string {
	switch mode {
	case "production", "development":
		return mode
	}
	return ""
}

// sourceMap maps a devtool setting onto the closest esbuild mode.
func sourceMap(devtool string) api.SourceMap {
	switch {
	case devtool == "", devtool == "none", devtool == "false", devtool == "0":
		return api.SourceMapNone
	case strings.HasPrefix(devtool, "eval"), strings.HasPrefix(devtool, "inline"):
		return api.SourceMapInline
	case strings.HasPrefix(devtool, "hidden"):
		return api.SourceMapExternal
	default:
		return api.SourceMapLinked
	}
}

// boolOption reads a boolean option that may arrive as a bool or, from
// environment and flags, as a string.
func boolOption(opts map[string]any, key string, def bool) bool {
	switch v := opts[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// definitions reads the define plugin's replacements. Strings are taken as
// source text, other scalars are formatted as literals.
func definitions(opts map[string]any) (map[string]string, error) {
	raw, ok := opts["definitions"]
	if !ok {
		return nil, nil
	}
	defs, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("definitions: expected a mapping, got %T", raw)
	}

	out := make(map[string]string, len(defs))
	for k, v := range defs {
		switch t := v.(type) {
		case string:
			out[k] = t
		case bool, int64, uint64, float64:
			out[k] = fmt.Sprint(t)
		case nil:
			out[k] = "null"
		default:
			return nil, fmt.Errorf("definitions.%s: unsupported value %T", k, v)
		}
	}
	return out, nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
