package update

import (
	"path/filepath"
	"strings"

	"github.com/superagent-dev/superagent/internal/errors"
)

// resolveWithinRoot resolves a project-relative path against the project
// root and rejects any target that escapes it. This is the directory-
// traversal defense every filesystem mutation must pass through before
// anything is written.
func resolveWithinRoot(root, relPath string) (string, error) {
	if relPath == "" {
		return "", errors.NewUnsafePathError(relPath)
	}
	if filepath.IsAbs(relPath) {
		return "", errors.NewUnsafePathError(relPath)
	}

	rootClean := filepath.Clean(root)
	full := filepath.Clean(filepath.Join(rootClean, filepath.FromSlash(relPath)))

	if full == rootClean {
		return "", errors.NewUnsafePathError(relPath)
	}
	if !strings.HasPrefix(full, rootClean+string(filepath.Separator)) {
		return "", errors.NewUnsafePathError(relPath)
	}

	return full, nil
}
