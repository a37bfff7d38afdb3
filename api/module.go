package api

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/skekre98/bundlecfg/core"
	"github.com/skekre98/bundlecfg/web"
)

const (
	Name     = "api"
	BasePath = "/api/v1"
)

type module struct {
	settings SettingsFunc
}

// Module mounts the API under BasePath on the web module's engine.
func Module(settings SettingsFunc) core.Module { return &module{settings: settings} }

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name} }

func (m *module) Configure(c core.Container) error {
	h := &Handler{
		Settings: m.settings,
		Logger:   core.Get[zerolog.Logger](c).With().Str("module", Name).Logger(),
	}
	h.Register(web.Engine(c).Group(BasePath))
	return nil
}

func (m *module) Start(_ context.Context, _ core.Container) error { return nil }
func (m *module) Stop(_ context.Context, _ core.Container) error  { return nil }
