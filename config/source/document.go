package source

import (
	"context"

	"github.com/skekre98/bundlecfg/config"
)

// DocumentSource loads a single JSON or YAML document, such as the bundler
// configuration written by an upstream generator or an overlay fragment
// checked into the project.
//
// The file is read on every Load; nothing is cached between calls.
type DocumentSource struct {
	// Path of the document. A .json extension selects the JSON decoder;
	// anything else is read as YAML, which also covers most JSON.
	Path string

	// Label overrides the name reported in errors and logs.
	Label string
}

// Name returns the label, or "document:<path>" when no label is set.
func (d *DocumentSource) Name() string {
	if d.Label != "" {
		return d.Label
	}
	return "document:" + d.Path
}

// Load reads and parses the document.
func (d *DocumentSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readDocument(d.Path)
}

// Watch is not implemented for DocumentSource and returns nil immediately.
func (d *DocumentSource) Watch(ctx context.Context, ch chan<- config.Event) error { return nil }
