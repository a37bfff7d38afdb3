package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"

	"github.com/skekre98/bundlecfg/config"
)

// File is one output produced by a build.
type File struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// Result describes a finished build.
type Result struct {
	Files    []File   `json:"files"`
	Warnings []string `json:"warnings,omitempty"`
}

// BuildError carries the messages of a failed esbuild run.
type BuildError struct {
	Messages []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("esbuild failed with %d error(s): %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

// Engine runs esbuild for merged configurations.
type Engine struct {
	// Write emits the output files; otherwise they are only reported.
	Write bool

	// Outdir is used when the configuration has no output.path.
	Outdir string

	Logger zerolog.Logger
}

// NewEngine returns an Engine configured from the bundle settings.
func NewEngine(s config.BundleSettings, l zerolog.Logger) *Engine {
	return &Engine{Write: s.Write, Outdir: s.Outdir, Logger: l}
}

// Options decodes merged and translates it into esbuild build options.
func (e *Engine) Options(merged config.Mapping) (api.BuildOptions, error) {
	cfg, err := Decode(merged)
	if err != nil {
		return api.BuildOptions{}, err
	}
	opts, err := Options(cfg, e.Outdir, e.Logger)
	if err != nil {
		return api.BuildOptions{}, err
	}
	opts.Write = e.Write
	opts.Metafile = true
	return opts, nil
}

// Build runs one esbuild build for merged. Cancelling ctx cancels the build.
func (e *Engine) Build(ctx context.Context, merged config.Mapping) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts, err := e.Options(merged)
	if err != nil {
		buildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	start := time.Now()
	res, err := e.run(ctx, opts)
	buildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		buildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	buildsTotal.WithLabelValues("success").Inc()
	return res, nil
}

func (e *Engine) run(ctx context.Context, opts api.BuildOptions) (*Result, error) {
	bc, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return nil, &BuildError{Messages: messageTexts(ctxErr.Errors)}
	}
	defer bc.Dispose()

	done := make(chan api.BuildResult, 1)
	go func() { done <- bc.Rebuild() }()

	var result api.BuildResult
	select {
	case result = <-done:
	case <-ctx.Done():
		bc.Cancel()
		<-done
		return nil, ctx.Err()
	}

	for _, msg := range result.Warnings {
		e.Logger.Warn().Str("warning", formatMessage(msg)).Msg("build warning")
	}
	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			e.Logger.Error().Str("error", formatMessage(msg)).Msg("build error")
		}
		return nil, &BuildError{Messages: messageTexts(result.Errors)}
	}

	out := &Result{
		Files:    make([]File, 0, len(result.OutputFiles)),
		Warnings: messageTexts(result.Warnings),
	}
	for _, f := range result.OutputFiles {
		out.Files = append(out.Files, File{Path: f.Path, Size: len(f.Contents)})
	}
	if len(out.Files) == 0 && result.Metafile != "" {
		files, err := metafileOutputs(result.Metafile)
		if err != nil {
			return nil, err
		}
		out.Files = files
	}
	for _, f := range out.Files {
		e.Logger.Info().Str("file", f.Path).Int("size", f.Size).Msg("built file")
	}
	return out, nil
}

// metafileOutputs lists the outputs recorded in an esbuild metafile.
func metafileOutputs(metafile string) ([]File, error) {
	var meta struct {
		Outputs map[string]struct {
			Bytes int `json:"bytes"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal([]byte(metafile), &meta); err != nil {
		return nil, fmt.Errorf("parse metafile: %w", err)
	}

	files := make([]File, 0, len(meta.Outputs))
	for path, info := range meta.Outputs {
		files = append(files, File{Path: path, Size: info.Bytes})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func messageTexts(msgs []api.Message) []string {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = formatMessage(m)
	}
	return out
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}
