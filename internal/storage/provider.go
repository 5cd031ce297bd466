// Package storage defines the content-tree file-system abstraction.
package storage

import "github.com/ferrant/inkwell/internal/models"

// Provider is the interface for content file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the
	// content root). The attachments/ subtree is skipped.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the content root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the content root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the content root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the content root).
	Move(oldPath, newPath string) error
}
