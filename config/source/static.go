package source

import (
	"context"

	"github.com/skekre98/bundlecfg/config"
)

// StaticSource serves a fragment held in memory, such as a built-in overlay.
type StaticSource struct {
	Label string
	Data  config.Mapping
}

// Name returns the source label, or "static".
func (s *StaticSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "static"
}

// Load returns a fresh copy of Data on every call.
func (s *StaticSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Data.ToMap(), nil
}

// Watch returns nil immediately; static data never changes.
func (s *StaticSource) Watch(ctx context.Context, ch chan<- config.Event) error { return nil }
