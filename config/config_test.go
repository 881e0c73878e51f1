package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spdb.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := write(t, `
associations:
  hcl: ['\.tf$']
  json: ['\.geojson$', '\.jsonl$']
color: never
logLevel: debug
root: `+dir+`
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Associations: map[string][]string{
			"hcl":  {`\.tf$`},
			"json": {`\.geojson$`, `\.jsonl$`},
		},
		Color:    ColorNever,
		LogLevel: "debug",
		Root:     dir,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	l, err := cfg.Level()
	if err != nil || l != slog.LevelDebug {
		t.Errorf("level %v %v", l, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(write(t, "associations: {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Color != ColorAuto || cfg.LogLevel != "warn" {
		t.Errorf("got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"color", "color: sometimes\n"},
		{"level", "logLevel: loud\n"},
		{"pattern", "associations:\n  json: ['(']\n"},
		{"root", "root: /does/not/exist/at/all\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(write(t, tc.body))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v", err)
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}
