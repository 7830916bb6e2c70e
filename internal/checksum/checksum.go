// Package checksum fingerprints rename plans so a reviewed dry run can be
// matched against the plan that is about to execute.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/starford/redate/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Entries returns a digest over the ordered source/target pairs. Entry order
// is part of the digest because execution order is.
func Entries(entries []models.RenameEntry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.SourcePath))
		h.Write([]byte{0})
		h.Write([]byte(e.TargetPath))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
