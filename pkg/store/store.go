// Package store provides the folder-oriented document store that counsel polls for
// contracts and writes generated artifacts into. Backends exist for Azure Blob Storage,
// Amazon S3, and an in-process memory store. Object stores have no native folders, so
// folders are represented by a marker object under the folder's key prefix and the
// folder handle is the slash-joined path from the root.
package store

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

// FolderID is an opaque folder handle issued by a Store.
type FolderID string

// FileID is an opaque file handle issued by a Store.
type FileID string

// Root is the sentinel handle for the top of the store. Every backend accepts it as a parent.
const Root FolderID = "0"

// Kind distinguishes folders from files in a listing.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// Item is a single child entry returned by ListChildren. Version changes whenever a
// file's content is replaced; it is empty for folders.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Version string `json:"version,omitempty"`
}

// System is the document store consumed by the pipeline.
type System interface {
	// Start registers startup work (container or bucket checks) with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// ListChildren returns the direct children of folder in store order.
	ListChildren(ctx context.Context, folder FolderID) ([]Item, error)
	// CreateFolder creates name under parent. When a folder with that name already exists
	// the returned error is a *ConflictError carrying the existing handle when known.
	CreateFolder(ctx context.Context, parent FolderID, name string) (FolderID, error)
	// ReadText returns the text content of file.
	ReadText(ctx context.Context, file FileID) (string, error)
	// WriteFile writes data as name inside folder, replacing any existing file of that name.
	WriteFile(ctx context.Context, folder FolderID, name string, data []byte) (FileID, error)
	// CurrentAccount returns the identity (email) of the account the store runs as,
	// or an empty string when the backend has no notion of one.
	CurrentAccount(ctx context.Context) (string, error)
}

// FindFile returns the handle of the file called name directly inside folder.
// The boolean is false when no such file exists.
func FindFile(ctx context.Context, s System, folder FolderID, name string) (FileID, bool, error) {
	items, err := s.ListChildren(ctx, folder)
	if err != nil {
		return "", false, err
	}
	for _, item := range items {
		if item.Kind == KindFile && item.Name == name {
			return FileID(item.ID), true, nil
		}
	}
	return "", false, nil
}

// findFolder scans items for a folder called name.
func findFolder(items []Item, name string) (FolderID, bool) {
	for _, item := range items {
		if item.Kind == KindFolder && item.Name == name {
			return FolderID(item.ID), true
		}
	}
	return "", false
}

// ValidateName rejects names that cannot be a single path segment.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.Contains(name, "/") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// prefixOf converts a folder handle into the key prefix used by object store backends.
// Root maps to the empty prefix.
func prefixOf(folder FolderID) (string, error) {
	if folder == "" {
		return "", ErrInvalidFolder
	}
	if folder == Root {
		return "", nil
	}
	p := string(folder)
	if strings.Contains(p, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFolder, p)
	}
	return strings.Trim(p, "/") + "/", nil
}

// childPath joins a folder handle and a child name into a slash-separated key.
func childPath(folder FolderID, name string) (string, error) {
	prefix, err := prefixOf(folder)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, name), nil
}

// lastSegment returns the final path segment of a key or prefix.
func lastSegment(key string) string {
	return path.Base(strings.TrimSuffix(key, "/"))
}
