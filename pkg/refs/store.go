// Package refs persists ref bindings as small files under a repository
// directory and rebinds them atomically.
package refs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
)

var (
	ErrNotFound     = errors.New("ref not found")
	ErrCASMismatch  = errors.New("ref compare-and-swap mismatch")
	ErrSymbolic     = errors.New("ref is symbolic")
	ErrInvalidName  = errors.New("invalid ref name")
	ErrSymlinkDepth = errors.New("symbolic ref chain too deep")
	ErrMalformed    = errors.New("malformed ref file")
)

const (
	DefaultLockTimeout = 2 * time.Second
	lockRetryDelay     = 5 * time.Millisecond
	maxSymbolicDepth   = 5
	symbolicPrefix     = "ref: "
	unbornKind         = "-"
)

// Store reads and writes ref files rooted at a repository directory:
// HEAD-style pointers live at the top level, everything else under refs/,
// and reflogs under logs/.
//
// A rebind writes <name>.lock with O_EXCL, checks the expected old value
// while holding the lock, then renames the lock over the ref file, so
// concurrent writers of one name are serialized and readers only ever see
// a complete binding.
type Store struct {
	root        string
	lockTimeout time.Duration
	log         logrus.FieldLogger
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long a rebind waits for a competing writer.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithLogger sets the logger used for rebind and delete events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore returns a Store rooted at root. By default it logs nowhere.
func NewStore(root string, opts ...Option) *Store {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	s := &Store{
		root:        root,
		lockTimeout: DefaultLockTimeout,
		log:         quiet,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) refPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// binding is the parsed content of one ref file: either a symbolic target
// or a direct ref.
type binding struct {
	target string
	direct ref.Ref
}

func (b binding) symbolic() bool { return b.target != "" }

func (s *Store) read(name string) (binding, error) {
	data, err := os.ReadFile(s.refPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return binding{}, fmt.Errorf("ref %q: %w", name, ErrNotFound)
		}
		return binding{}, fmt.Errorf("read ref %q: %w", name, err)
	}
	return parseBinding(name, data)
}

func parseBinding(name string, data []byte) (binding, error) {
	content := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
		target = strings.TrimSpace(target)
		if err := ValidateName(target); err != nil {
			return binding{}, fmt.Errorf("parse ref %q: %w: %w", name, ErrMalformed, err)
		}
		return binding{target: target}, nil
	}

	kindName, hex, ok := strings.Cut(content, " ")
	if !ok {
		return binding{}, fmt.Errorf("parse ref %q: %w: content %q", name, ErrMalformed, content)
	}
	id, err := object.ParseID(hex)
	if err != nil {
		return binding{}, fmt.Errorf("parse ref %q: %w: %w", name, ErrMalformed, err)
	}
	kind := object.KindNone
	if kindName != unbornKind {
		if kind, err = object.ParseKind(kindName); err != nil {
			return binding{}, fmt.Errorf("parse ref %q: %w: %w", name, ErrMalformed, err)
		}
	}
	r, err := ref.New(name, id, kind)
	if err != nil {
		return binding{}, fmt.Errorf("parse ref %q: %w: %w", name, ErrMalformed, err)
	}
	return binding{direct: r}, nil
}

func formatBinding(r ref.Ref) string {
	kind := unbornKind
	if r.Kind() != object.KindNone {
		kind = r.Kind().String()
	}
	return kind + " " + r.ObjectID().String() + "\n"
}

// Get returns the direct binding stored under name. Symbolic refs report
// ErrSymbolic; use Resolve to follow them.
func (s *Store) Get(name string) (ref.Ref, error) {
	if err := ValidateName(name); err != nil {
		return ref.Ref{}, err
	}
	b, err := s.read(name)
	if err != nil {
		return ref.Ref{}, err
	}
	if b.symbolic() {
		return ref.Ref{}, fmt.Errorf("get ref %q: %w (-> %s)", name, ErrSymbolic, b.target)
	}
	return b.direct, nil
}

// Symbolic returns the target of a symbolic ref. ok is false when name
// holds a direct binding.
func (s *Store) Symbolic(name string) (target string, ok bool, err error) {
	if err := ValidateName(name); err != nil {
		return "", false, err
	}
	b, err := s.read(name)
	if err != nil {
		return "", false, err
	}
	return b.target, b.symbolic(), nil
}

// Resolve follows symbolic refs from name and returns the final binding
// under the requested name. A symbolic ref whose target does not exist yet
// resolves to an unborn ref.
func (s *Store) Resolve(name string) (ref.Ref, error) {
	if err := ValidateName(name); err != nil {
		return ref.Ref{}, err
	}
	current := name
	for depth := 0; depth <= maxSymbolicDepth; depth++ {
		b, err := s.read(current)
		if err != nil {
			if errors.Is(err, ErrNotFound) && current != name {
				return ref.Unborn(name)
			}
			return ref.Ref{}, err
		}
		if !b.symbolic() {
			return ref.New(name, b.direct.ObjectID(), b.direct.Kind())
		}
		current = b.target
	}
	return ref.Ref{}, fmt.Errorf("resolve ref %q: %w", name, ErrSymlinkDepth)
}

func (s *Store) currentID(name string) (object.ID, error) {
	r, err := s.Resolve(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return object.NullID, nil
		}
		return object.NullID, err
	}
	return r.ObjectID(), nil
}

// Update rebinds r.Name() unconditionally. Updating a symbolic name
// replaces it with a direct binding.
func (s *Store) Update(r ref.Ref) error {
	return s.write(r, nil, "update")
}

// CompareAndSwap rebinds r.Name() only if it currently resolves to
// expectedOld; object.NullID expects the name to be missing or unborn.
func (s *Store) CompareAndSwap(r ref.Ref, expectedOld object.ID) error {
	return s.write(r, &expectedOld, "update")
}

// Create binds a name that must not already point anywhere.
func (s *Store) Create(r ref.Ref) error {
	expected := object.NullID
	return s.write(r, &expected, "create")
}

func (s *Store) write(r ref.Ref, expectedOld *object.ID, reason string) error {
	name := r.Name()
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}

	var oldID object.ID
	err := s.withLock(name, func(lock *os.File) error {
		var err error
		oldID, err = s.currentID(name)
		if err != nil {
			return fmt.Errorf("read old value: %w", err)
		}
		if expectedOld != nil && oldID != *expectedOld {
			return fmt.Errorf("%w (expected %s, found %s)", ErrCASMismatch, *expectedOld, oldID)
		}
		_, err = lock.WriteString(formatBinding(r))
		return err
	})
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}

	s.log.WithFields(logrus.Fields{
		"ref": name,
		"old": oldID.Short(12),
		"new": r.ObjectID().Short(12),
	}).Debug("ref updated")

	return s.logRebind(name, oldID, r.ObjectID(), reason)
}

// SetSymbolic makes name point at target, e.g. HEAD -> refs/heads/master.
func (s *Store) SetSymbolic(name, target string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("set symbolic ref: %w", err)
	}
	if err := ValidateName(target); err != nil {
		return fmt.Errorf("set symbolic ref %q: target: %w", name, err)
	}
	if name == target {
		return fmt.Errorf("set symbolic ref %q: %w: points at itself", name, ErrInvalidName)
	}

	err := s.withLock(name, func(lock *os.File) error {
		_, err := lock.WriteString(symbolicPrefix + target + "\n")
		return err
	})
	if err != nil {
		return fmt.Errorf("set symbolic ref %q: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"ref": name, "target": target}).Debug("symbolic ref set")
	return nil
}

// Delete removes the ref file for name.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}

	var oldID object.ID
	err := s.withLock(name, func(*os.File) error {
		b, err := s.read(name)
		if err != nil {
			return err
		}
		if !b.symbolic() {
			oldID = b.direct.ObjectID()
		}
		return os.Remove(s.refPath(name))
	})
	if err != nil {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	s.log.WithField("ref", name).Debug("ref deleted")
	return s.logRebind(name, oldID, object.NullID, "delete")
}

func (s *Store) logRebind(name string, oldID, newID object.ID, reason string) error {
	if err := s.appendReflog(name, oldID, newID, reason); err != nil {
		s.log.WithError(err).WithField("ref", name).Warn("reflog append failed")
		return &ReflogError{Ref: name, Old: oldID, New: newID, Err: err}
	}
	return nil
}

// withLock holds <name>.lock while fn runs. If fn succeeds and wrote to
// the lock file, the lock replaces the ref file; an untouched lock (as in
// Delete) is simply removed.
func (s *Store) withLock(name string, fn func(lock *os.File) error) error {
	refPath := s.refPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	lockPath := refPath + ".lock"
	lock, err := s.acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	cleanupLock := true
	defer func() {
		if lock != nil {
			_ = lock.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	if err := fn(lock); err != nil {
		return err
	}

	info, err := lock.Stat()
	if err != nil {
		return fmt.Errorf("stat lock: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}
	if err := lock.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := lock.Close(); err != nil {
		lock = nil
		return fmt.Errorf("close: %w", err)
	}
	lock = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	cleanupLock = false
	return nil
}

func (s *Store) acquireLock(lockPath string) (*os.File, error) {
	deadline := s.now().Add(s.lockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if s.now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(lockRetryDelay)
			continue
		}
		return nil, err
	}
}

// List returns every ref whose name starts with prefix, sorted by name.
// Symbolic refs are listed under their own name with their resolved value.
// Files that do not hold a valid ref are logged and skipped.
func (s *Store) List(prefix string) ([]ref.Ref, error) {
	var names []string

	entries, err := os.ReadDir(s.root)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && isPseudoRef(e.Name()) {
			names = append(names, e.Name())
		}
	}

	refsRoot := filepath.Join(s.root, strings.TrimSuffix(ref.RefsPrefix, "/"))
	err = filepath.WalkDir(refsRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list refs: %w", err)
	}

	var out []ref.Ref
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		r, err := s.Resolve(name)
		if errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidName) {
			s.log.WithError(err).WithField("ref", name).Warn("skipping unreadable ref")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list refs: %w", err)
		}
		out = append(out, r)
	}
	slices.SortFunc(out, ref.Compare)
	return out, nil
}

// isPseudoRef matches top-level pointers such as HEAD and STAGE_HEAD.
func isPseudoRef(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if (c < 'A' || c > 'Z') && c != '_' {
			return false
		}
	}
	return true
}

// ValidateName rejects names that cannot be stored as ref files.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	case strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.Contains(name, ".."), strings.Contains(name, "//"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, " \t\n\r\\"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("%w: %q ends in .lock", ErrInvalidName, name)
	}
	if !isPseudoRef(name) && !strings.HasPrefix(name, ref.RefsPrefix) {
		return fmt.Errorf("%w: %q is neither a pseudo-ref nor under %s", ErrInvalidName, name, ref.RefsPrefix)
	}
	return nil
}
