package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/util"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "closgen.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
k: 4
strategy: multi-path-equal-cost
log_level: debug
redis:
  addr: 10.9.9.9:6379
  db: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.K != 4 {
		t.Errorf("K = %d, want 4", cfg.K)
	}
	if cfg.ParsedStrategy() != routing.MultiPathEqualCost {
		t.Errorf("strategy = %v", cfg.ParsedStrategy())
	}
	if cfg.Redis.Addr != "10.9.9.9:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "k: 8\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ParsedStrategy() != routing.SinglePath {
		t.Errorf("default strategy = %v, want single-path", cfg.ParsedStrategy())
	}
	if cfg.Redis.Addr == "" {
		t.Error("default redis addr empty")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	if _, err := Load(writeConfig(t, "k: 4\ndgeree: 8\n")); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"odd degree", Config{K: 3}, util.ErrInvalidTopology},
		{"zero degree", Config{K: 0}, util.ErrInvalidTopology},
		{"bad strategy", Config{K: 4, Strategy: "fastest"}, util.ErrValidationFailed},
		{"bad log level", Config{K: 4, LogLevel: "chatty"}, util.ErrValidationFailed},
		{"negative db", Config{K: 4, Redis: RedisConfig{DB: -1}}, util.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	good := Config{K: 4, Strategy: "single-path-static", LogLevel: "info"}
	if err := good.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Error("missing file accepted")
	}
}
