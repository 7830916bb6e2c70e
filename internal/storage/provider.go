// Package storage defines the folder file-system abstraction used by the
// rename engine.
package storage

import "github.com/starford/redate/internal/models"

// Provider is the interface for file operations inside one folder. Paths may
// be absolute (and must then lie inside the folder) or relative to it.
type Provider interface {
	// Root returns the absolute folder path.
	Root() string
	// Path returns the absolute path of name inside the folder.
	Path(name string) string
	// List returns every regular file directly in the folder, sorted by name.
	List() ([]models.FileInfo, error)
	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)
	// Rename moves oldPath to newPath. It fails with fs.ErrExist instead of
	// overwriting an existing newPath.
	Rename(oldPath, newPath string) error
}
