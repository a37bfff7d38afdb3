// Package overlay resolves the effective bundler configuration for a build
// profile: the generated base configuration followed by the profile's
// built-in fragment and any extra fragments, merged in that order.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/skekre98/bundlecfg/config"
	"github.com/skekre98/bundlecfg/config/source"
)

// ErrUnknownProfile is returned by ForProfile for profiles it has no
// overlay set for.
var ErrUnknownProfile = errors.New("unknown build profile")

// Production returns the production fragment: a minifier plugin with source
// maps enabled. Every call returns a new Mapping.
func Production() config.Mapping {
	return config.Mapping{
		"plugins": config.Sequence{
			config.Mapping{
				"kind": config.Scalar{V: "minifier"},
				"options": config.Mapping{
					"produceSourceMap": config.Scalar{V: true},
				},
			},
		},
	}
}

// Resolver merges a base configuration with an ordered list of overlays.
// A Resolver holds no state between calls; each Resolve reloads every
// source.
type Resolver struct {
	Base     config.ConfigSource
	Overlays []config.ConfigSource
	Logger   zerolog.Logger
}

// ForProfile returns a Resolver for profile. The production profile puts
// the Production fragment directly after the base; extra overlays follow in
// the order given.
func ForProfile(profile string, base config.ConfigSource, extra ...config.ConfigSource) (*Resolver, error) {
	var overlays []config.ConfigSource
	switch profile {
	case config.ProfileProduction:
		overlays = append(overlays, &source.StaticSource{Label: "overlay:production", Data: Production()})
	case config.ProfileDevelopment:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	overlays = append(overlays, extra...)
	return &Resolver{Base: base, Overlays: overlays}, nil
}

// FromSettings builds the Resolver described by the build settings: the base
// document, the profile fragment, then each overlay file.
func FromSettings(b config.BuildSettings) (*Resolver, error) {
	extra := make([]config.ConfigSource, 0, len(b.Overlays))
	for _, path := range b.Overlays {
		extra = append(extra, &source.DocumentSource{Path: path})
	}
	return ForProfile(b.Profile, &source.DocumentSource{Path: b.BaseConfig, Label: "base"}, extra...)
}

// Resolve loads the base and every overlay and merges them left to right.
//
// Load failures are wrapped with the failing source's name. Fragments that
// cannot be represented, such as self-referencing maps, fail with
// config.ErrMalformedInput. Nothing is returned on error.
func (r *Resolver) Resolve(ctx context.Context) (config.Mapping, error) {
	start := time.Now()
	merged, err := r.resolve(ctx)
	resolutionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		resolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	resolutionsTotal.WithLabelValues("success").Inc()
	return merged, nil
}

func (r *Resolver) resolve(ctx context.Context) (config.Mapping, error) {
	if r.Base == nil {
		return nil, errors.New("no base configuration source")
	}

	sources := make([]config.ConfigSource, 0, 1+len(r.Overlays))
	sources = append(sources, r.Base)
	sources = append(sources, r.Overlays...)

	fragments := make([]config.Mapping, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Name(), err)
		}
		frag, err := config.MappingFrom(data)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", src.Name(), err)
		}

		r.Logger.Debug().Str("source", src.Name()).Int("keys", len(frag)).Msg("fragment loaded")
		fragments = append(fragments, frag)
	}

	return config.MergeAll(fragments...)
}
