package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Manager orchestrates settings loading from multiple sources, validates the
// result and notifies subscribers of changes.
//
// Manager supports:
//   - Loading from multiple sources, merged with Merge (later sources win)
//   - Defaults for fields no source sets
//   - Atomic updates with validation
//   - Change detection and subscriber notifications
//   - Optional automatic reload on source changes
//
// Validation failures prevent any change from taking effect. All public
// methods are safe for concurrent use.
type Manager struct {
	sources   []ConfigSource
	config    any
	defaults  any
	binder    *Binder
	logger    zerolog.Logger
	mu        sync.RWMutex
	subs      []chan Event
	autoWatch bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Options configures the behavior of a Manager.
type Options struct {
	// AutoReload enables automatic reloading when sources support watching.
	// Watchers run until Close is called.
	AutoReload bool

	// Defaults, when non-nil, is a value of the configuration struct type
	// whose fields fill anything the sources leave unset.
	Defaults any

	// Logger receives reload failures from watchers. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// NewManager creates a Manager that loads and validates configuration from
// the provided sources into cfg.
//
// cfg must be a pointer to a struct using `config` tags for key mapping and
// `validate` tags for validation rules. Sources are processed in order, so
// with [file, env, cli] a CLI flag overrides both the environment and the
// file. Sequences from different sources are concatenated rather than
// replaced. Keys are case-insensitive: every source's keys are lowercased
// before merging, so BUNDLECFG_BUILD_BASECONFIG overrides build.baseConfig
// from a file.
//
// Returns an error if the initial load or validation fails.
//
// Example:
//
//	var s config.Settings
//	mgr, err := config.NewManager(&s, config.Options{Defaults: config.DefaultSettings()},
//	    &source.FileSource{BasePath: "configs"},
//	    &source.EnvSource{},
//	    &source.CLISource{Args: os.Args[1:]},
//	)
func NewManager(cfg any, opts Options, sources ...ConfigSource) (*Manager, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	m := &Manager{
		sources:   sources,
		config:    cfg,
		defaults:  opts.Defaults,
		binder:    NewBinder(),
		logger:    logger,
		autoWatch: opts.AutoReload,
	}

	if err := m.Reload(context.Background()); err != nil {
		return nil, err
	}

	if m.autoWatch {
		m.startWatchers()
	}

	return m, nil
}

// Reload loads every source, merges the results, binds them into a fresh
// instance and, if that succeeds, swaps it into the managed struct.
// Subscribers are notified when any field changed.
//
// On any failure the current configuration is left untouched. Returns an
// error if the context is cancelled, a source fails to load, a source
// returns malformed data (ErrMalformedInput), or binding fails.
func (m *Manager) Reload(ctx context.Context) error {
	merged := Mapping{}
	for _, src := range m.sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		frag, err := MappingFrom(vals)
		if err != nil {
			return fmt.Errorf("failed to merge config from %s: %w", src.Name(), err)
		}
		merged = mergeMapping(merged, foldKeys(frag))
	}

	newCfg := reflect.New(reflect.TypeOf(m.config).Elem()).Interface()

	if err := m.binder.BindWithDefaults(merged.ToMap(), newCfg, m.defaults); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	m.mu.Lock()
	oldCfg := reflect.New(reflect.TypeOf(m.config).Elem()).Interface()
	reflect.ValueOf(oldCfg).Elem().Set(reflect.ValueOf(m.config).Elem())
	reflect.ValueOf(m.config).Elem().Set(reflect.ValueOf(newCfg).Elem())
	m.mu.Unlock()

	if !reflect.DeepEqual(oldCfg, newCfg) {
		m.notify(diffEvent(oldCfg, newCfg))
	}
	return nil
}

// View runs fn while holding the read lock, so fn sees a consistent
// configuration even while a reload is in progress. fn must not call
// Reload.
func (m *Manager) View(fn func()) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn()
}

// Subscribe registers a channel to receive change events.
//
// Delivery is non-blocking: if the channel's buffer is full the event is
// dropped, so subscribers should use a buffered channel. The channel is
// never closed by the Manager. Reloads that change nothing send no event.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

// Close stops the source watchers started by AutoReload and waits for them
// to exit. It is safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (m *Manager) startWatchers() {
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	for _, src := range m.sources {
		ch := make(chan Event, 1)
		m.wg.Add(2)

		// Watch may block until ctx is done, so it gets its own goroutine.
		go func() {
			defer m.wg.Done()
			if err := src.Watch(ctx, ch); err != nil && ctx.Err() == nil {
				m.logger.Warn().Err(err).Str("source", src.Name()).Msg("config watch failed")
			}
		}()

		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					if err := m.Reload(ctx); err != nil {
						m.logger.Error().Err(err).Str("source", src.Name()).Msg("config reload failed")
					}
				}
			}
		}()
	}
}

// foldKeys returns a copy of m with every mapping key lowercased, at any
// depth. m must be acyclic.
func foldKeys(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = foldValue(v)
	}
	return out
}

func foldValue(v Value) Value {
	switch t := v.(type) {
	case Mapping:
		return foldKeys(t)
	case Sequence:
		out := make(Sequence, len(t))
		for i, e := range t {
			out[i] = foldValue(e)
		}
		return out
	}
	return v
}
