package node

import (
	"errors"
	"fmt"
	"strings"
)

// Separator delimits the segments of a tree path, e.g. "roads/highways/i5".
const Separator = '/'

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidPath     = errors.New("invalid path")
)

// ParentPath returns the path of the tree containing fullPath.
//
// Given "path/to/node" it returns "path/to"; given "node" it returns "" (a
// root-level entry). ok is false only when fullPath is empty. The path is
// not otherwise validated.
func ParentPath(fullPath string) (parent string, ok bool) {
	if fullPath == "" {
		return "", false
	}
	idx := strings.LastIndexByte(fullPath, Separator)
	if idx < 0 {
		return "", true
	}
	return fullPath[:idx], true
}

// ValidatePath rejects empty paths and paths ending in the separator.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if p[len(p)-1] == Separator {
		return fmt.Errorf("%w: path cannot end with separator: %q", ErrInvalidPath, p)
	}
	return nil
}

// LeafName returns the last segment of fullPath, or fullPath itself when it
// has no separator. ok is false when fullPath is empty.
func LeafName(fullPath string) (name string, ok bool) {
	if fullPath == "" {
		return "", false
	}
	idx := strings.LastIndexByte(fullPath, Separator)
	if idx < 0 {
		return fullPath, true
	}
	return fullPath[idx+1:], true
}

// IsDirectChild reports whether childPath sits exactly one level below
// parentPath. The empty parentPath is the root tree, whose direct children
// are the non-empty paths without a separator. Equal paths, siblings,
// unrelated paths and deeper descendants all report false.
func IsDirectChild(parentPath, childPath string) bool {
	idx := strings.LastIndexByte(childPath, Separator)
	if parentPath == "" {
		return childPath != "" && idx < 0
	}
	return idx == len(parentPath) && strings.HasPrefix(childPath, parentPath)
}

// IsDescendant reports whether childPath lies below parentPath at any
// depth. A path is not its own descendant, and "ab" is not below "a".
func IsDescendant(parentPath, childPath string) bool {
	return len(childPath) > len(parentPath) &&
		(parentPath == "" || childPath[len(parentPath)] == Separator) &&
		strings.HasPrefix(childPath, parentPath)
}

// AncestorPaths returns every path leading to p, shallowest first and p
// itself last: "a/b/c" yields ["a", "a/b", "a/b/c"]. Trailing separators
// are ignored.
func AncestorPaths(p string) ([]string, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	trimmed := strings.TrimRight(p, string(Separator))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: no segments in %q", ErrInvalidPath, p)
	}

	paths := make([]string, 0, strings.Count(trimmed, string(Separator))+1)
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] == Separator {
			paths = append(paths, trimmed[:i])
		}
	}
	return append(paths, trimmed), nil
}

// AppendChild joins parentPath and childName with the separator. Neither
// argument is validated, so appending to the root ("") yields "/name";
// use ChildPath when the parent may be the root.
func AppendChild(parentPath, childName string) string {
	return parentPath + string(Separator) + childName
}

// ChildPath is AppendChild except that a child of the root tree is just
// childName.
func ChildPath(parentPath, childName string) string {
	if parentPath == "" {
		return childName
	}
	return AppendChild(parentPath, childName)
}
