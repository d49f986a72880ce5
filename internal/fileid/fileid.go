// Package fileid derives deterministic report IDs from file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "file:"

// ReportID returns a stable report ID for the given path. The path is
// cleaned first, so spellings naming the same file yield the same ID
// and re-ingesting a file updates its report instead of adding one.
func ReportID(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return prefix + hex.EncodeToString(sum[:])
}

// IsFileReport reports whether id was derived from a file path.
func IsFileReport(id string) bool {
	return strings.HasPrefix(id, prefix)
}
