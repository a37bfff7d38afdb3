package config_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/skekre98/bundlecfg/config"
)

type testPlugin struct {
	Kind    string         `config:"kind" validate:"required"`
	Options map[string]any `config:"options"`
}

type testOutput struct {
	Path     string `config:"path" validate:"required"`
	Filename string `config:"filename"`
}

type testBuild struct {
	Mode    string       `config:"mode" validate:"omitempty,oneof=development production none"`
	Entry   []string     `config:"entry"`
	Output  testOutput   `config:"output"`
	Plugins []testPlugin `config:"plugins" validate:"dive"`
}

func TestBinder_Bind(t *testing.T) {
	tests := []struct {
		name      string
		source    map[string]any
		want      testBuild
		wantStage string
	}{
		{
			name: "merged bundler config",
			source: map[string]any{
				"mode":  "production",
				"entry": []any{"./app.js"},
				"output": map[string]any{
					"path":     "/build",
					"filename": "[name].js",
				},
				"plugins": []any{
					map[string]any{"kind": "define"},
					map[string]any{"kind": "minifier", "options": map[string]any{"produceSourceMap": true}},
				},
				"module": map[string]any{"rules": []any{}},
			},
			want: testBuild{
				Mode:   "production",
				Entry:  []string{"./app.js"},
				Output: testOutput{Path: "/build", Filename: "[name].js"},
				Plugins: []testPlugin{
					{Kind: "define"},
					{Kind: "minifier", Options: map[string]any{"produceSourceMap": true}},
				},
			},
		},
		{
			name: "comma-separated entry string",
			source: map[string]any{
				"entry":  "./a.js,./b.js",
				"output": map[string]any{"path": "/build"},
			},
			want: testBuild{
				Entry:  []string{"./a.js", "./b.js"},
				Output: testOutput{Path: "/build"},
			},
		},
		{
			name: "plugin without kind",
			source: map[string]any{
				"output":  map[string]any{"path": "/build"},
				"plugins": []any{map[string]any{"options": map[string]any{}}},
			},
			wantStage: "validate",
		},
		{
			name: "unknown mode",
			source: map[string]any{
				"mode":   "staging",
				"output": map[string]any{"path": "/build"},
			},
			wantStage: "validate",
		},
		{
			name: "missing required nested field",
			source: map[string]any{
				"output": map[string]any{"filename": "x.js"},
			},
			wantStage: "validate",
		},
		{
			name: "plugins of the wrong shape",
			source: map[string]any{
				"output":  map[string]any{"path": "/build"},
				"plugins": "minifier",
			},
			wantStage: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binder := config.NewBinder()
			var got testBuild

			err := binder.Bind(tt.source, &got)

			if tt.wantStage != "" {
				var bindErr *config.BindError
				if !errors.As(err, &bindErr) {
					t.Fatalf("Bind() error = %v, want BindError", err)
				}
				if bindErr.Stage != tt.wantStage {
					t.Errorf("Bind() stage = %s, want %s", bindErr.Stage, tt.wantStage)
				}
				return
			}
			if err != nil {
				t.Fatalf("Bind() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bind() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBinder_Bind_DurationConversion(t *testing.T) {
	type Server struct {
		ReadTimeout  time.Duration `config:"readTimeout" validate:"required"`
		WriteTimeout time.Duration `config:"writeTimeout"`
	}

	binder := config.NewBinder()
	var got Server

	err := binder.Bind(map[string]any{"readTimeout": "5s", "writeTimeout": "1m"}, &got)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	want := Server{ReadTimeout: 5 * time.Second, WriteTimeout: time.Minute}
	if got != want {
		t.Errorf("Bind() got = %+v, want %+v", got, want)
	}
}

func TestBinder_BindWithDefaults(t *testing.T) {
	type Log struct {
		Level  string `config:"level" validate:"required"`
		Format string `config:"format" validate:"required,oneof=json console"`
	}
	type Settings struct {
		Name     string   `config:"name" validate:"required"`
		Log      Log      `config:"log"`
		Overlays []string `config:"overlays"`
	}

	defaults := Settings{
		Name:     "bundlecfg",
		Log:      Log{Level: "info", Format: "json"},
		Overlays: []string{"overlays/default.yaml"},
	}

	t.Run("defaults fill missing fields", func(t *testing.T) {
		binder := config.NewBinder()
		var got Settings

		err := binder.BindWithDefaults(map[string]any{"log": map[string]any{"level": "debug"}}, &got, defaults)
		if err != nil {
			t.Fatalf("BindWithDefaults() error = %v", err)
		}

		want := Settings{
			Name:     "bundlecfg",
			Log:      Log{Level: "debug", Format: "json"},
			Overlays: []string{"overlays/default.yaml"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("BindWithDefaults() got = %+v, want %+v", got, want)
		}
	})

	t.Run("source values win over defaults", func(t *testing.T) {
		binder := config.NewBinder()
		var got Settings

		source := map[string]any{
			"name":     "custom",
			"log":      map[string]any{"level": "warn", "format": "console"},
			"overlays": []any{"a.yaml"},
		}
		if err := binder.BindWithDefaults(source, &got, &defaults); err != nil {
			t.Fatalf("BindWithDefaults() error = %v", err)
		}

		want := Settings{
			Name:     "custom",
			Log:      Log{Level: "warn", Format: "console"},
			Overlays: []string{"a.yaml"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("BindWithDefaults() got = %+v, want %+v", got, want)
		}
	})

	t.Run("validation sees defaults", func(t *testing.T) {
		binder := config.NewBinder()
		var got Settings

		if err := binder.BindWithDefaults(map[string]any{}, &got, nil); err == nil {
			t.Fatal("BindWithDefaults() without defaults should fail validation")
		}
		if err := binder.BindWithDefaults(map[string]any{}, &got, defaults); err != nil {
			t.Errorf("BindWithDefaults() error = %v", err)
		}
	})

	t.Run("mismatched defaults type", func(t *testing.T) {
		binder := config.NewBinder()
		var got Settings

		err := binder.BindWithDefaults(map[string]any{}, &got, Log{})

		var bindErr *config.BindError
		if !errors.As(err, &bindErr) || bindErr.Stage != "defaults" {
			t.Errorf("BindWithDefaults() error = %v, want defaults stage BindError", err)
		}
	})
}

func TestBindError_Error(t *testing.T) {
	err := &config.BindError{
		Stage: "decode",
		Err:   errors.New("test error"),
	}

	expected := "config decode error: test error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestBindError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	err := &config.BindError{
		Stage: "validate",
		Err:   innerErr,
	}

	if !errors.Is(err, innerErr) {
		t.Errorf("errors.Is(%v, %v) = false", err, innerErr)
	}
}
