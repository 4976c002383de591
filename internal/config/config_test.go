package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port == 0 || cfg.DataDir == "" || cfg.CacheDir == "" || cfg.MaxConcurrentSessions < 1 {
		t.Fatalf("default config invalid: %+v", cfg)
	}
	if cfg.HTTPTimeout <= 0 {
		t.Fatalf("default http timeout invalid: %s", cfg.HTTPTimeout)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("not_exists.yml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Port != defaultPort || cfg.CacheDir != defaultCacheDir {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadReadsAndValidates(t *testing.T) {
	path := writeConfig(t, `port: 9090
data_dir: testdata
cache_dir: testcache
max_concurrent_sessions: 4
http_timeout: 5s
log_level: DEBUG
launch_command: /usr/bin/viewer
launch_args: ["--title", "{title}", "{entrypoint}"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 || cfg.DataDir != "testdata" || cfg.CacheDir != "testcache" || cfg.MaxConcurrentSessions != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level not normalized: %q", cfg.LogLevel)
	}
	if cfg.LaunchCommand != "/usr/bin/viewer" || len(cfg.LaunchArgs) != 3 {
		t.Fatalf("unexpected launch settings: %q %v", cfg.LaunchCommand, cfg.LaunchArgs)
	}
}

func TestLoadFillsBlankFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, "cache_dir: \"\"\nport: 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CacheDir != defaultCacheDir || cfg.Port != defaultPort {
		t.Fatalf("blank fields not defaulted: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"concurrency": "max_concurrent_sessions: 0\n",
		"timeout":     "http_timeout: -1s\n",
		"log level":   "log_level: loud\n",
		"yaml":        "port: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
