package contracts

import (
	"path"
	"slices"
	"strings"

	"github.com/JaimeStill/counsel/pkg/store"
)

// Identity is the stable key for one uploaded contract file. The same upload keeps its
// identity across polling cycles. A re-upload changes the store version even when the
// backend reuses the file handle, so it becomes a new identity.
type Identity struct {
	Name    string       `json:"name"`
	FileID  store.FileID `json:"file_id"`
	File    string       `json:"file"`
	Version string       `json:"version,omitempty"`
}

// Key returns the ledger key for the identity.
func (id Identity) Key() string {
	key := id.Name + "_" + string(id.FileID)
	if id.Version != "" {
		key += "@" + id.Version
	}
	return key
}

// Filter recognizes contract files in the intake folder.
type Filter struct {
	Extensions    []string
	SidecarSuffix string
}

// IsContract reports whether filename is a contract candidate: a recognized
// extension, not hidden, not an office lock file, and not an instruction sidecar.
func (f Filter) IsContract(filename string) bool {
	if filename == "" || strings.HasPrefix(filename, ".") || strings.HasPrefix(filename, "~$") {
		return false
	}
	if f.SidecarSuffix != "" && strings.HasSuffix(filename, f.SidecarSuffix) {
		return false
	}
	return slices.Contains(f.Extensions, strings.ToLower(path.Ext(filename)))
}

// Name derives the contract name from a file name: the stem without its extension or
// any sidecar suffix.
func (f Filter) Name(filename string) string {
	name := strings.TrimSuffix(filename, path.Ext(filename))
	if f.SidecarSuffix != "" {
		name = strings.TrimSuffix(name, f.SidecarSuffix)
	}
	return name
}

// SidecarName returns the instruction file name for a contract name.
func (f Filter) SidecarName(contractName string) string {
	return contractName + f.SidecarSuffix
}

// Identify returns the contract identities among items, in listing order.
func (f Filter) Identify(items []store.Item) []Identity {
	var ids []Identity
	for _, item := range items {
		if item.Kind != store.KindFile || !f.IsContract(item.Name) {
			continue
		}
		ids = append(ids, Identity{
			Name:    f.Name(item.Name),
			FileID:  store.FileID(item.ID),
			File:    item.Name,
			Version: item.Version,
		})
	}
	return ids
}
