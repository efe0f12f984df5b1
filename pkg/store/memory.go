package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

type memoryNode struct {
	id       string
	name     string
	kind     Kind
	version  string
	data     []byte
	children []string
}

// Memory is an in-process System. Folder creation is atomic, so concurrent creators of the
// same name observe a *ConflictError carrying the winner's handle.
type Memory struct {
	mu      sync.RWMutex
	nodes   map[string]*memoryNode
	account string
	logger  *slog.Logger
}

// NewMemory creates an empty memory store whose CurrentAccount reports account.
func NewMemory(account string, logger *slog.Logger) *Memory {
	m := &Memory{
		nodes:   make(map[string]*memoryNode),
		account: account,
		logger:  logger.With("system", "store", "backend", "memory"),
	}
	m.nodes[string(Root)] = &memoryNode{id: string(Root), kind: KindFolder}
	return m
}

func (m *Memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("memory store ready")
	return nil
}

func (m *Memory) ListChildren(ctx context.Context, folder FolderID) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parent, err := m.folder(folder)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parent.children))
	for _, id := range parent.children {
		n := m.nodes[id]
		items = append(items, Item{ID: n.id, Name: n.name, Kind: n.kind, Version: n.version})
	}
	return items, nil
}

func (m *Memory) CreateFolder(ctx context.Context, parent FolderID, name string) (FolderID, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.folder(parent)
	if err != nil {
		return "", err
	}

	if existing := m.child(p, name); existing != nil {
		return "", &ConflictError{Name: name, ExistingID: FolderID(existing.id)}
	}

	n := &memoryNode{id: uuid.NewString(), name: name, kind: KindFolder}
	m.nodes[n.id] = n
	p.children = append(p.children, n.id)
	return FolderID(n.id), nil
}

func (m *Memory) ReadText(ctx context.Context, file FileID) (string, error) {
	m.mu.RLock()
	n, ok := m.nodes[string(file)]
	m.mu.RUnlock()

	if !ok || n.kind != KindFile {
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	return ExtractText(ctx, n.name, n.data)
}

func (m *Memory) WriteFile(ctx context.Context, folder FolderID, name string, data []byte) (FileID, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.folder(folder)
	if err != nil {
		return "", err
	}

	if existing := m.child(p, name); existing != nil {
		if existing.kind != KindFile {
			return "", &ConflictError{Name: name}
		}
		existing.data = append([]byte(nil), data...)
		existing.version = uuid.NewString()
		return FileID(existing.id), nil
	}

	n := &memoryNode{
		id:      uuid.NewString(),
		name:    name,
		kind:    KindFile,
		version: uuid.NewString(),
		data:    append([]byte(nil), data...),
	}
	m.nodes[n.id] = n
	p.children = append(p.children, n.id)
	return FileID(n.id), nil
}

func (m *Memory) CurrentAccount(ctx context.Context) (string, error) {
	return m.account, nil
}

// ReadFile returns the raw bytes of file.
func (m *Memory) ReadFile(file FileID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[string(file)]
	if !ok || n.kind != KindFile {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	return append([]byte(nil), n.data...), nil
}

func (m *Memory) folder(id FolderID) (*memoryNode, error) {
	if id == "" {
		return nil, ErrInvalidFolder
	}
	n, ok := m.nodes[string(id)]
	if !ok || n.kind != KindFolder {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFolder, id)
	}
	return n, nil
}

func (m *Memory) child(parent *memoryNode, name string) *memoryNode {
	for _, id := range parent.children {
		if n := m.nodes[id]; n.name == name {
			return n
		}
	}
	return nil
}
