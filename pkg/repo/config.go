package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"
	"github.com/klauspost/compress/zstd"

	"github.com/odvcencio/geogot/pkg/refs"
)

const configFile = "config.toml"

// Config stores repository-local settings.
type Config struct {
	Core    CoreConfig        `toml:"core"`
	Refs    RefsConfig        `toml:"refs"`
	Objects ObjectsConfig     `toml:"objects"`
	Remotes map[string]string `toml:"remotes,omitempty"`
}

type CoreConfig struct {
	// DefaultBranch is the short name HEAD points at after init.
	DefaultBranch string `toml:"default_branch"`
}

type RefsConfig struct {
	LockTimeout Duration `toml:"lock_timeout"`
}

type ObjectsConfig struct {
	// Compression is a zstd level name: fastest, default, better or best.
	Compression string `toml:"compression"`
}

// Duration is a time.Duration written as a string such as "2s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the settings a fresh repository starts with.
func DefaultConfig() *Config {
	return &Config{
		Core:    CoreConfig{DefaultBranch: "master"},
		Refs:    RefsConfig{LockTimeout: Duration{refs.DefaultLockTimeout}},
		Objects: ObjectsConfig{Compression: zstd.SpeedDefault.String()},
		Remotes: make(map[string]string),
	}
}

// CompressionLevel maps Objects.Compression to a zstd level.
func (c *Config) CompressionLevel() (zstd.EncoderLevel, error) {
	name := strings.TrimSpace(c.Objects.Compression)
	if name == "" {
		return zstd.SpeedDefault, nil
	}
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return zstd.SpeedDefault, fmt.Errorf("unknown compression level %q", name)
	}
	return level, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	branch := strings.TrimSpace(c.Core.DefaultBranch)
	if branch == "" {
		return errors.New("core.default_branch is required")
	}
	if err := refs.ValidateName(headsRef(branch)); err != nil {
		return fmt.Errorf("core.default_branch: %w", err)
	}
	if c.Refs.LockTimeout.Duration < 0 {
		return fmt.Errorf("refs.lock_timeout must not be negative, got %s", c.Refs.LockTimeout)
	}
	if _, err := c.CompressionLevel(); err != nil {
		return fmt.Errorf("objects.compression: %w", err)
	}
	return nil
}

// ReadConfig reads <dir>/config.toml. A missing file yields DefaultConfig;
// keys absent from the file keep their defaults.
func ReadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically replaces <dir>/config.toml.
func WriteConfig(dir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(dir, configFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetRemote stores/updates a named remote URL in repository config.
func (r *Repo) SetRemote(name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	if err := refs.ValidateName(remoteRef(name)); err != nil {
		return fmt.Errorf("set remote: %w", err)
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("set remote: remote URL is required")
	}

	cfg, err := ReadConfig(r.Dir)
	if err != nil {
		return err
	}
	cfg.Remotes[name] = remoteURL
	if err := WriteConfig(r.Dir, cfg); err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

// RemoteURL returns the configured URL for the given remote name.
func (r *Repo) RemoteURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("remote name is required")
	}
	url, ok := r.Config.Remotes[name]
	if !ok || strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	return url, nil
}
