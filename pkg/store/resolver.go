package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Resolver maps (parent, name) pairs onto folder handles, creating folders on demand.
// Concurrent calls for the same pair inside one process share a single store round trip,
// and creates that lose a race to another writer converge on the winner's handle.
type Resolver struct {
	store  System
	logger *slog.Logger
	group  singleflight.Group
}

// NewResolver creates a Resolver over s.
func NewResolver(s System, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  s,
		logger: logger.With("system", "resolver"),
	}
}

// ResolveOrCreate returns the handle of the folder called name under parent, creating it
// when it does not exist. Repeated or concurrent calls with the same arguments return the
// same handle.
func (r *Resolver) ResolveOrCreate(ctx context.Context, parent FolderID, name string) (FolderID, error) {
	if parent == "" {
		return "", ErrInvalidFolder
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}

	key := string(parent) + "\x00" + name
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.resolve(ctx, parent, name)
	})
	if err != nil {
		return "", err
	}
	return v.(FolderID), nil
}

// ResolvePath walks names from parent, resolving or creating each level in turn.
func (r *Resolver) ResolvePath(ctx context.Context, parent FolderID, names ...string) (FolderID, error) {
	current := parent
	for _, name := range names {
		id, err := r.ResolveOrCreate(ctx, current, name)
		if err != nil {
			return "", err
		}
		current = id
	}
	return current, nil
}

func (r *Resolver) resolve(ctx context.Context, parent FolderID, name string) (FolderID, error) {
	items, err := r.store.ListChildren(ctx, parent)
	if err != nil {
		if errors.Is(err, ErrInvalidFolder) {
			return "", err
		}
		r.logger.WarnContext(ctx, "list before create failed", "parent", parent, "name", name, "error", err)
	} else if id, ok := findFolder(items, name); ok {
		return id, nil
	}

	id, err := r.store.CreateFolder(ctx, parent, name)
	if err == nil {
		r.logger.InfoContext(ctx, "folder created", "parent", parent, "name", name, "id", id)
		return id, nil
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}

	if conflict.ExistingID != "" {
		r.logger.InfoContext(ctx, "folder exists, using conflict id", "name", name, "id", conflict.ExistingID)
		return conflict.ExistingID, nil
	}

	items, listErr := r.store.ListChildren(ctx, parent)
	if listErr != nil {
		return "", fmt.Errorf("%w: %q: relist after conflict: %w", ErrUnresolved, name, listErr)
	}
	if id, ok := findFolder(items, name); ok {
		r.logger.InfoContext(ctx, "folder exists, found by relisting", "name", name, "id", id)
		return id, nil
	}

	return "", fmt.Errorf("%w: %q exists under %s but is not listed", ErrUnresolved, name, parent)
}
