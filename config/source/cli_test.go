package source

import (
	"context"
	"os"
	"reflect"
	"testing"
)

func TestCLISource_Load(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected map[string]any
	}{
		{
			name: "simple flags",
			args: []string{"--profile=development", "--output=-"},
			expected: map[string]any{
				"profile": "development",
				"output":  "-",
			},
		},
		{
			name: "dot notation flags",
			args: []string{"--build.baseConfig=target/app.webpack.config.json", "--log.level=debug", "--log.format=console"},
			expected: map[string]any{
				"build": map[string]any{
					"baseConfig": "target/app.webpack.config.json",
				},
				"log": map[string]any{
					"level":  "debug",
					"format": "console",
				},
			},
		},
		{
			name: "space-separated values",
			args: []string{"--build.profile", "development", "--server.addr", ":9090"},
			expected: map[string]any{
				"build": map[string]any{
					"profile": "development",
				},
				"server": map[string]any{
					"addr": ":9090",
				},
			},
		},
		{
			name: "mixed formats",
			args: []string{"--build.format=yaml", "--build.output", "merged.yaml", "--bundle.write=true"},
			expected: map[string]any{
				"build": map[string]any{
					"format": "yaml",
					"output": "merged.yaml",
				},
				"bundle": map[string]any{
					"write": "true",
				},
			},
		},
		{
			name: "deeply nested",
			args: []string{"--observability.metrics.enabled=true", "--observability.metrics.path=/prom"},
			expected: map[string]any{
				"observability": map[string]any{
					"metrics": map[string]any{
						"enabled": "true",
						"path":    "/prom",
					},
				},
			},
		},
		{
			name: "single dash flags",
			args: []string{"-build.profile=development", "-server.addr=:9090"},
			expected: map[string]any{
				"build": map[string]any{
					"profile": "development",
				},
				"server": map[string]any{
					"addr": ":9090",
				},
			},
		},
		{
			name: "empty values ignored",
			args: []string{"--build.output=", "--build.format=yaml"},
			expected: map[string]any{
				"build": map[string]any{
					"format": "yaml",
				},
			},
		},
		{
			name: "non-flag arguments ignored",
			args: []string{"resolve", "--build.profile=development", "extra", "--log.level=warn"},
			expected: map[string]any{
				"build": map[string]any{
					"profile": "development",
				},
				"log": map[string]any{
					"level": "warn",
				},
			},
		},
		{
			name:     "no flags",
			args:     []string{"resolve", "arg1", "arg2"},
			expected: map[string]any{},
		},
		{
			name:     "empty args",
			args:     []string{},
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &CLISource{Args: tt.args}
			result, err := source.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Load() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCLISource_Load_DefaultsToProcessArgs(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"bundlecfg", "--build.profile=development"}

	result, err := (&CLISource{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	expected := map[string]any{"build": map[string]any{"profile": "development"}}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Load() = %v, want %v", result, expected)
	}
}

func TestCLISource_Load_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&CLISource{Args: []string{"--a=b"}}).Load(ctx); err == nil {
		t.Error("Load() with cancelled context should fail")
	}
}

func TestCLISource_Name(t *testing.T) {
	source := &CLISource{}
	if name := source.Name(); name != "cli" {
		t.Errorf("Name() = %v, want %v", name, "cli")
	}
}

func TestCLISource_Watch(t *testing.T) {
	source := &CLISource{}
	if err := source.Watch(context.Background(), nil); err != nil {
		t.Errorf("Watch() returned error: %v", err)
	}
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "double dash unchanged",
			args:     []string{"--build.profile=production", "--bundle.write"},
			expected: []string{"--build.profile=production", "--bundle.write"},
		},
		{
			name:     "single dash long flag converted",
			args:     []string{"-build.profile=production", "-bundle.write"},
			expected: []string{"--build.profile=production", "--bundle.write"},
		},
		{
			name:     "single char flag unchanged",
			args:     []string{"-v", "-h"},
			expected: []string{"-v", "-h"},
		},
		{
			name:     "mixed arguments",
			args:     []string{"build", "--log.level=debug", "-log.format=console", "arg", "-v"},
			expected: []string{"build", "--log.level=debug", "--log.format=console", "arg", "-v"},
		},
		{
			name:     "single dash alone unchanged",
			args:     []string{"-"},
			expected: []string{"-"},
		},
		{
			name:     "empty args",
			args:     []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeArgs(tt.args)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("normalizeArgs(%v) = %v, want %v", tt.args, result, tt.expected)
			}
		})
	}
}

func TestExtractFlagName(t *testing.T) {
	tests := []struct {
		arg      string
		expected string
	}{
		{"--build.profile=production", "build.profile"},
		{"--bundle.write", "bundle.write"},
		{"-log.level=debug", "log.level"},
		{"---output", "output"},
		{"--=value", ""},
		{"--", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			result := extractFlagName(tt.arg)
			if result != tt.expected {
				t.Errorf("extractFlagName(%q) = %q, want %q", tt.arg, result, tt.expected)
			}
		})
	}
}
