// Package models defines the domain types shared across redate packages.
package models

import "time"

// RenameEntry is one planned rename. Paths are absolute.
type RenameEntry struct {
	SourcePath string `json:"source"`
	TargetPath string `json:"target"`
}

// FileInfo is a regular file found directly inside a folder.
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Batch kinds.
const (
	KindRename = "rename"
	KindMonths = "months"
)
