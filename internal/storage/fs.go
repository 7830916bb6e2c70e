package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the folder
}

// NewFS creates a new FS provider rooted at the given folder. A missing path
// or a non-directory is reported as a validation error on "folder".
func NewFS(root string) (*FS, error) {
	if root == "" {
		return nil, apperr.Validation("folder", "is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Validation("folder", "does not exist: "+abs)
		}
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, apperr.Validation("folder", "is not a directory: "+abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute folder path.
func (f *FS) Root() string { return f.root }

// Path returns the absolute path of name inside the folder.
func (f *FS) Path(name string) string { return filepath.Join(f.root, name) }

// safePath resolves p against the folder and rejects any result that
// escapes it.
func (f *FS) safePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(p)
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(f.root, cleaned)
	}
	rel, err := filepath.Rel(f.root, cleaned)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes folder: %s", p)
	}
	return cleaned, nil
}

// List returns every regular file directly in the folder, sorted by name.
// Symlinks to regular files are listed; subdirectories are not descended into.
func (f *FS) List() ([]models.FileInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	out := make([]models.FileInfo, 0, len(entries))
	for _, d := range entries {
		info, err := f.fileInfo(d)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // removed between ReadDir and Info
			}
			return nil, fmt.Errorf("storage: stat %s: %w", d.Name(), err)
		}
		if info == nil {
			continue
		}
		out = append(out, models.FileInfo{
			Name:    d.Name(),
			Path:    filepath.Join(f.root, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fileInfo returns the info of a regular file entry, following symlinks.
// Other entries yield nil.
func (f *FS) fileInfo(d fs.DirEntry) (fs.FileInfo, error) {
	switch {
	case d.Type().IsRegular():
		return d.Info()
	case d.Type()&fs.ModeSymlink != 0:
		info, err := os.Stat(filepath.Join(f.root, d.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil // dangling
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return info, nil
	}
	return nil, nil
}

// Exists reports whether anything exists at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Lstat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
}

// Rename moves oldPath to newPath without overwriting an existing target.
func (f *FS) Rename(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if err := renameNoReplace(absOld, absNew); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// renameChecked is the portable no-overwrite rename: a stat check followed by
// os.Rename. It races with concurrent writers in the same folder.
func renameChecked(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldPath, newPath)
}
