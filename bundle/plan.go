package bundle

import (
	"github.com/evanw/esbuild/pkg/api"
)

// Plan is a readable summary of the esbuild options a configuration
// produces. It is what the plan command and endpoint report.
type Plan struct {
	EntryPoints []PlanEntry       `json:"entryPoints" yaml:"entryPoints"`
	Outdir      string            `json:"outdir,omitempty" yaml:"outdir,omitempty"`
	Outfile     string            `json:"outfile,omitempty" yaml:"outfile,omitempty"`
	EntryNames  string            `json:"entryNames,omitempty" yaml:"entryNames,omitempty"`
	Minify      PlanMinify        `json:"minify" yaml:"minify"`
	SourceMap   string            `json:"sourceMap" yaml:"sourceMap"`
	Define      map[string]string `json:"define,omitempty" yaml:"define,omitempty"`
	Banner      string            `json:"banner,omitempty" yaml:"banner,omitempty"`
}

// PlanEntry is one entry point and, when set, its output name.
type PlanEntry struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// PlanMinify lists which minification passes are on.
type PlanMinify struct {
	Whitespace  bool `json:"whitespace" yaml:"whitespace"`
	Identifiers bool `json:"identifiers" yaml:"identifiers"`
	Syntax      bool `json:"syntax" yaml:"syntax"`
}

// Describe summarizes opts.
func Describe(opts api.BuildOptions) Plan {
	p := Plan{
		EntryPoints: make([]PlanEntry, 0, len(opts.EntryPointsAdvanced)+len(opts.EntryPoints)),
		Outdir:      opts.Outdir,
		Outfile:     opts.Outfile,
		EntryNames:  opts.EntryNames,
		Minify: PlanMinify{
			Whitespace:  opts.MinifyWhitespace,
			Identifiers: opts.MinifyIdentifiers,
			Syntax:      opts.MinifySyntax,
		},
		SourceMap: sourceMapName(opts.Sourcemap),
		Banner:    opts.Banner["js"],
	}
	for _, e := range opts.EntryPoints {
		p.EntryPoints = append(p.EntryPoints, PlanEntry{Input: e})
	}
	for _, e := range opts.EntryPointsAdvanced {
		p.EntryPoints = append(p.EntryPoints, PlanEntry{Input: e.InputPath, Output: e.OutputPath})
	}
	if len(opts.Define) > 0 {
		p.Define = opts.Define
	}
	return p
}

func sourceMapName(sm api.SourceMap) string {
	switch sm {
	case api.SourceMapInline:
		return "inline"
	case api.SourceMapLinked:
		return "linked"
	case api.SourceMapExternal:
		return "external"
	case api.SourceMapInlineAndExternal:
		return "inline-and-external"
	}
	return "none"
}
