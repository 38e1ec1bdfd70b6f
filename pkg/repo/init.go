package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/geogot/pkg/ref"
)

var ErrNotRepository = errors.New("not a geogot repository")

// Init creates a new repository at path: .geogot/ with objects/,
// refs/heads/, refs/tags/, logs/, config.toml, a symbolic HEAD pointing at
// the default branch, and unborn STAGE_HEAD and WORK_HEAD. Returns an
// error if .geogot/ already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	dir := filepath.Join(path, DirName)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", dir)
	}

	dirs := []string{
		filepath.Join(dir, "objects"),
		filepath.Join(dir, "refs", "heads"),
		filepath.Join(dir, "refs", "tags"),
		filepath.Join(dir, "logs"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	cfg := DefaultConfig()
	if err := WriteConfig(dir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r, err := newRepo(path, dir, cfg, buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.Refs.SetSymbolic(ref.Head, headsRef(cfg.Core.DefaultBranch)); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	for _, name := range []string{ref.StageHead, ref.WorkHead} {
		unborn, err := ref.Unborn(name)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		if err := r.Refs.Create(unborn); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}

	r.log.WithField("dir", dir).Info("initialized repository")
	return r, nil
}

// Open searches upward from path for a .geogot/ directory and opens the
// repository.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		dir := filepath.Join(cur, DirName)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(dir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r, err := newRepo(cur, dir, cfg, buildOptions(opts))
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r.log.Debug("opened repository")
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w (or any parent up to /)", ErrNotRepository)
		}
		cur = parent
	}
}

// Head resolves HEAD to its current binding.
func (r *Repo) Head() (ref.Ref, error) {
	return r.Refs.Resolve(ref.Head)
}
