package refs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/geogot/pkg/object"
)

var ErrReflogAppend = errors.New("ref updated but reflog append failed")

// ReflogError indicates the ref file update succeeded, but appending the
// corresponding reflog entry failed.
type ReflogError struct {
	Ref string
	Old object.ID
	New object.ID
	Err error
}

func (e *ReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("update ref %q: %s (old=%s new=%s): %v", e.Ref, ErrReflogAppend, e.Old, e.New, e.Err)
}

func (e *ReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ReflogError) Is(target error) bool {
	return target == ErrReflogAppend
}

// ReflogEntry records one rebind of a ref.
type ReflogEntry struct {
	Ref    string
	Old    object.ID
	New    object.ID
	Time   time.Time
	Reason string
}

func (s *Store) reflogPath(name string) string {
	return filepath.Join(s.root, "logs", filepath.FromSlash(name))
}

func (s *Store) appendReflog(name string, oldID, newID object.ID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}
	logPath := s.reflogPath(name)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}

	line := fmt.Sprintf("%s %s %d %s\n", oldID, newID, s.now().Unix(), reason)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// Reflog returns the recorded rebinds of name, newest first. limit <= 0
// returns everything. A ref that was never rebound has an empty reflog.
func (s *Store) Reflog(name string, limit int) ([]ReflogEntry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(s.reflogPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		oldID, err := object.ParseID(parts[0])
		if err != nil {
			continue
		}
		newID, err := object.ParseID(parts[1])
		if err != nil {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ReflogEntry{
			Ref:    name,
			Old:    oldID,
			New:    newID,
			Time:   time.Unix(ts, 0),
			Reason: parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
