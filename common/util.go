package common

import (
	"path/filepath"
	"strings"
)

// ReprPath returns the path of a file as it should be displayed to the user:
// relative to the working directory if possible.
func ReprPath(absPath, workDir string) string {
	if rel, err := filepath.Rel(workDir, absPath); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}

	return absPath
}

// IsPowerOfTwo returns whether n is a positive power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp rounds n up to the next multiple of align.  An alignment of zero
// leaves n unchanged.
func AlignUp(n, align uint64) uint64 {
	if align == 0 {
		return n
	}

	return (n + align - 1) / align * align
}
