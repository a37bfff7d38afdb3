package config_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/bundlecfg/config"
)

// mockSource is a test implementation of config.ConfigSource
type mockSource struct {
	name    string
	data    map[string]any
	errVal  error
	mu      sync.RWMutex
	watchCh chan struct{}
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Load(ctx context.Context) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.errVal != nil {
		return nil, m.errVal
	}
	// Reload copies, so returning the map itself is enough here.
	return m.data, nil
}

func (m *mockSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	if m.watchCh == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.watchCh:
			ch <- config.Event{}
		}
	}
}

func (m *mockSource) set(data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

type buildConfig struct {
	Name    string   `config:"name" validate:"required"`
	Profile string   `config:"profile" validate:"required,oneof=production development"`
	Plugins []string `config:"plugins"`
	Output  struct {
		Path     string `config:"path"`
		Filename string `config:"filename"`
	} `config:"output"`
}

func TestNewManager_Success(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{
			"name":    "demo-spa",
			"profile": "production",
		},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)

	require.NoError(t, err)
	require.NotNil(t, manager)
	assert.Equal(t, "demo-spa", cfg.Name)
	assert.Equal(t, "production", cfg.Profile)
}

func TestNewManager_Errors(t *testing.T) {
	loadErr := errors.New("load error")
	cyclic := map[string]any{"name": "demo-spa"}
	cyclic["self"] = cyclic

	tests := []struct {
		name    string
		source  *mockSource
		wantIs  error
		wantMsg string
	}{
		{
			name:    "load error",
			source:  &mockSource{name: "broken", errVal: loadErr},
			wantIs:  loadErr,
			wantMsg: "failed to load config from broken",
		},
		{
			name:    "malformed source data",
			source:  &mockSource{name: "cyclic", data: cyclic},
			wantIs:  config.ErrMalformedInput,
			wantMsg: "failed to merge config from cyclic",
		},
		{
			name:    "validation error",
			source:  &mockSource{name: "test", data: map[string]any{"name": "demo-spa", "profile": "staging"}},
			wantMsg: "failed to bind config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg buildConfig
			_, err := config.NewManager(&cfg, config.Options{}, tt.source)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestManager_MultipleSources(t *testing.T) {
	file := &mockSource{
		name: "file",
		data: map[string]any{
			"name":    "demo-spa",
			"profile": "development",
			"plugins": []any{"define"},
			"output": map[string]any{
				"path":     "/build",
				"filename": "app.js",
			},
		},
	}
	env := &mockSource{
		name: "env",
		data: map[string]any{
			"profile": "production",
			"plugins": []any{"minifier"},
			"output": map[string]any{
				"filename": "app.min.js",
			},
		},
	}

	var cfg buildConfig
	_, err := config.NewManager(&cfg, config.Options{}, file, env)
	require.NoError(t, err)

	assert.Equal(t, "demo-spa", cfg.Name)
	assert.Equal(t, "production", cfg.Profile, "later source should override")
	assert.Equal(t, []string{"define", "minifier"}, cfg.Plugins, "sequences should concatenate in source order")
	assert.Equal(t, "/build", cfg.Output.Path, "untouched nested key should survive")
	assert.Equal(t, "app.min.js", cfg.Output.Filename)
}

func TestManager_Defaults(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa"},
	}

	var cfg buildConfig
	defaults := buildConfig{Profile: "production", Plugins: []string{"define"}}
	_, err := config.NewManager(&cfg, config.Options{Defaults: defaults}, source)

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Profile)
	assert.Equal(t, []string{"define"}, cfg.Plugins)
}

func TestManager_Reload(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "initial", "profile": "development"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	source.set(map[string]any{"name": "updated", "profile": "development"})
	require.NoError(t, manager.Reload(context.Background()))

	assert.Equal(t, "updated", cfg.Name)
	select {
	case evt := <-eventCh:
		assert.Equal(t, []string{"name"}, evt.ChangedKeys)
	case <-time.After(100 * time.Millisecond):
		t.Error("expected to receive event, but got none")
	}
}

func TestManager_Reload_NoChangeNoNotification(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa", "profile": "production"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	require.NoError(t, manager.Reload(context.Background()))

	select {
	case evt := <-eventCh:
		t.Errorf("expected no event when config unchanged, got %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_Reload_FailureKeepsCurrent(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa", "profile": "production"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	source.set(map[string]any{"name": "", "profile": "production"})
	require.Error(t, manager.Reload(context.Background()))

	assert.Equal(t, "demo-spa", cfg.Name)
}

func TestManager_Reload_Cancelled(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa", "profile": "production"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, manager.Reload(ctx), context.Canceled)
}

func TestManager_Subscribe_MultipleSubscribers(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa", "profile": "production"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	subs := []chan config.Event{
		make(chan config.Event, 1),
		make(chan config.Event, 1),
		make(chan config.Event, 1),
	}
	for _, ch := range subs {
		manager.Subscribe(ch)
	}

	source.set(map[string]any{"name": "demo-spa", "profile": "development"})
	require.NoError(t, manager.Reload(context.Background()))

	for i, ch := range subs {
		select {
		case evt := <-ch:
			assert.Equal(t, []string{"profile"}, evt.ChangedKeys)
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d did not receive event", i)
		}
	}
}

func TestManager_AutoReload(t *testing.T) {
	source := &mockSource{
		name:    "watched",
		data:    map[string]any{"name": "demo-spa", "profile": "production"},
		watchCh: make(chan struct{}),
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{AutoReload: true}, source)
	require.NoError(t, err)
	defer manager.Close()

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	source.set(map[string]any{"name": "demo-spa", "profile": "development"})
	source.watchCh <- struct{}{}

	select {
	case evt := <-eventCh:
		assert.Equal(t, []string{"profile"}, evt.ChangedKeys)
	case <-time.After(time.Second):
		t.Fatal("watcher did not trigger a reload")
	}

	manager.Close()
	manager.Close()
}

func TestManager_Reload_ConcurrentSafety(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa", "profile": "production"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	const numGoroutines = 10
	errCh := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			profile := "production"
			if i%2 == 0 {
				profile = "development"
			}
			source.set(map[string]any{"name": "demo-spa", "profile": profile})
			errCh <- manager.Reload(context.Background())
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		assert.NoError(t, <-errCh)
	}
	assert.Equal(t, "demo-spa", cfg.Name)
}

func TestManager_KeysAreCaseInsensitive(t *testing.T) {
	file := &mockSource{
		name: "file",
		data: map[string]any{
			"build": map[string]any{"baseConfig": "target/a.json", "profile": "production"},
		},
	}
	env := &mockSource{
		name: "env",
		data: map[string]any{
			"build": map[string]any{"baseconfig": "target/b.json"},
		},
	}

	var s config.Settings
	_, err := config.NewManager(&s, config.Options{Defaults: config.DefaultSettings()}, file, env)
	require.NoError(t, err)

	assert.Equal(t, "target/b.json", s.Build.BaseConfig)
	assert.Equal(t, "production", s.Build.Profile)
}

func TestManager_SettingsDefaults(t *testing.T) {
	source := &mockSource{
		name: "cli",
		data: map[string]any{
			"build": map[string]any{"baseConfig": "target/scalajs.webpack.config.json"},
			"log":   map[string]any{"level": "debug"},
		},
	}

	var s config.Settings
	_, err := config.NewManager(&s, config.Options{Defaults: config.DefaultSettings()}, source)
	require.NoError(t, err)

	want := config.DefaultSettings()
	want.Build.BaseConfig = "target/scalajs.webpack.config.json"
	want.Log.Level = "debug"
	assert.Equal(t, want, s)
}

func TestManager_SettingsRequireBaseConfig(t *testing.T) {
	var s config.Settings
	_, err := config.NewManager(&s, config.Options{Defaults: config.DefaultSettings()},
		&mockSource{name: "empty", data: map[string]any{}})

	var bindErr *config.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "validate", bindErr.Stage)
}

func TestManager_View(t *testing.T) {
	source := &mockSource{
		name: "test",
		data: map[string]any{"name": "demo-spa", "profile": "production"},
	}

	var cfg buildConfig
	manager, err := config.NewManager(&cfg, config.Options{}, source)
	require.NoError(t, err)

	var profile string
	manager.View(func() { profile = cfg.Profile })
	assert.Equal(t, "production", profile)
}
