package security

import (
	"path/filepath"
	"strings"
)

// PathJail resolves and validates paths relative to a fixed workspace root,
// the way internal/tools/files.Resolver does in the teacher, generalized
// into the guard subsystem so every file-touching tool shares one
// implementation.
type PathJail struct {
	Root string
}

// NewPathJail returns a PathJail rooted at the given workspace directory.
// The root is resolved to an absolute path immediately so later comparisons
// are stable even if the process changes its working directory.
func NewPathJail(root string) (*PathJail, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &PathJail{Root: abs}, nil
}

// SafePath resolves userPath relative to the workspace root and rejects it
// unless the normalized absolute result is the root itself or lies strictly
// beneath it. NUL bytes anywhere in the input are rejected outright.
func (j *PathJail) SafePath(userPath string) (string, error) {
	if strings.ContainsRune(userPath, 0) {
		return "", newError("path contains NUL byte")
	}
	clean := strings.TrimSpace(userPath)
	if clean == "" {
		return "", newError("path is required")
	}

	var target string
	if filepath.IsAbs(clean) {
		target = filepath.Clean(clean)
	} else {
		target = filepath.Join(j.Root, clean)
	}

	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", newError("resolve path: %v", err)
	}

	if targetAbs == j.Root {
		return targetAbs, nil
	}
	rel, err := filepath.Rel(j.Root, targetAbs)
	if err != nil {
		return "", newError("resolve path: %v", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", newError("path %q escapes workspace", userPath)
	}
	return targetAbs, nil
}
