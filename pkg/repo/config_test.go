package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestConfigRemoteRoundTrip(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetRemote("origin", "https://example.com/geo/parcels"); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}
	url, err := r.RemoteURL("origin")
	if err != nil {
		t.Fatalf("RemoteURL: %v", err)
	}
	if url != "https://example.com/geo/parcels" {
		t.Fatalf("remote URL = %q", url)
	}

	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got, _ := reopened.RemoteURL("origin"); got != url {
		t.Fatalf("persisted remote URL = %q, want %q", got, url)
	}
}

func TestConfigRemoteErrors(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetRemote("", "https://x"); err == nil {
		t.Error("empty remote name should fail")
	}
	if err := r.SetRemote("bad name", "https://x"); err == nil {
		t.Error("remote name with space should fail")
	}
	if err := r.SetRemote("origin", " "); err == nil {
		t.Error("empty URL should fail")
	}
	if _, err := r.RemoteURL("missing"); err == nil {
		t.Error("missing remote should fail")
	}
}

func TestReadConfigMissingReturnsDefaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.Core != def.Core || cfg.Refs != def.Refs || cfg.Objects != def.Objects {
		t.Fatalf("config = %+v, want defaults %+v", cfg, def)
	}
	if cfg.Remotes == nil {
		t.Fatal("Remotes map should be initialized")
	}
}

func TestReadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "[refs]\nlock_timeout = \"750ms\"\n"
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Refs.LockTimeout.Duration != 750*time.Millisecond {
		t.Fatalf("lock_timeout = %s", cfg.Refs.LockTimeout)
	}
	if cfg.Core.DefaultBranch != "master" {
		t.Fatalf("default_branch = %q, want default", cfg.Core.DefaultBranch)
	}
}

func TestWriteConfigTOML(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Core.DefaultBranch = "main"
	cfg.Objects.Compression = "fastest"
	if err := WriteConfig(dir, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"[core]", `default_branch = "main"`, `lock_timeout = "2s"`, `compression = "fastest"`} {
		if !strings.Contains(text, want) {
			t.Errorf("config.toml missing %q:\n%s", want, text)
		}
	}

	back, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	level, err := back.CompressionLevel()
	if err != nil || level != zstd.SpeedFastest {
		t.Fatalf("CompressionLevel = (%v, %v), want fastest", level, err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty branch", func(c *Config) { c.Core.DefaultBranch = "" }},
		{"bad branch", func(c *Config) { c.Core.DefaultBranch = "a..b" }},
		{"negative timeout", func(c *Config) { c.Refs.LockTimeout.Duration = -time.Second }},
		{"unknown compression", func(c *Config) { c.Objects.Compression = "ultra" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate should fail")
			}
			if err := WriteConfig(t.TempDir(), cfg); err == nil {
				t.Fatal("WriteConfig should refuse an invalid config")
			}
		})
	}
}

func TestReadConfigRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("[refs]\nlock_timeout = \"soon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig(dir); err == nil {
		t.Fatal("ReadConfig should reject an unparseable duration")
	}
}
