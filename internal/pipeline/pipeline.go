// Package pipeline drives contract intake: discovering new uploads, classifying them,
// generating the protected artifact set, and sweeping every contract for urgent
// deadlines.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/counsel/internal/actions"
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/contracts"
	"github.com/JaimeStill/counsel/pkg/generate"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/notify"
	"github.com/JaimeStill/counsel/pkg/render"
	"github.com/JaimeStill/counsel/pkg/store"
)

// ErrNotInitialized is returned by operations that need the folder taxonomy before
// Initialize has succeeded.
var ErrNotInitialized = errors.New("pipeline taxonomy not initialized")

// Deps are the external systems the pipeline consumes.
type Deps struct {
	Store     store.System
	Ledger    ledger.Ledger
	Generator generate.Generator
	Renderer  render.Renderer
	Notifier  notify.Notifier
	Logger    *slog.Logger
}

// Settings are the configuration values the pipeline reads.
type Settings struct {
	Taxonomy    config.TaxonomyConfig
	Processing  config.ProcessingConfig
	Render      config.RenderConfig
	Sampling    generate.Options
	MaxAttempts int
	Recipient   string
	Policy      actions.Policy
	// Now supplies the current time for action-item day counts. Nil uses time.Now.
	Now func() time.Time
}

// Folders are the resolved taxonomy roots.
type Folders struct {
	Intake    store.FolderID `json:"intake"`
	Output    store.FolderID `json:"output"`
	Interests store.FolderID `json:"interests"`
}

// Pipeline is the long-lived orchestrator. It owns the category folder cache and
// serializes discovery passes and sweeps, so at most one contract is in flight.
type Pipeline struct {
	store      store.System
	ledger     ledger.Ledger
	gen        generate.Generator
	renderer   render.Renderer
	notifier   notify.Notifier
	resolver   *store.Resolver
	classifier *contracts.Classifier
	parser     *actions.Parser
	filter     contracts.Filter
	artifacts  []artifactSpec
	settings   Settings
	logger     *slog.Logger

	run        sync.Mutex
	folders    Folders
	categories map[contracts.Category]store.FolderID

	statusMu  sync.RWMutex
	lastPass  *Report
	lastSweep *SweepReport
}

// New creates a Pipeline. Initialize must succeed before contracts are processed.
func New(deps Deps, settings Settings) *Pipeline {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	logger := deps.Logger.With("system", "pipeline")

	return &Pipeline{
		store:      deps.Store,
		ledger:     deps.Ledger,
		gen:        deps.Generator,
		renderer:   deps.Renderer,
		notifier:   deps.Notifier,
		resolver:   store.NewResolver(deps.Store, deps.Logger),
		classifier: contracts.NewClassifier(deps.Generator, settings.Processing.ClassifyExcerpt, deps.Logger),
		parser:     actions.NewParser(settings.Now),
		filter: contracts.Filter{
			Extensions:    settings.Taxonomy.Extensions,
			SidecarSuffix: settings.Taxonomy.SidecarSuffix,
		},
		artifacts:  artifactSpecs(&settings.Render),
		settings:   settings,
		logger:     logger,
		categories: make(map[contracts.Category]store.FolderID),
	}
}

// Initialize resolves the taxonomy roots and every category folder, creating any that
// are missing. A failure here leaves the pipeline unusable.
func (p *Pipeline) Initialize(ctx context.Context) error {
	p.run.Lock()
	defer p.run.Unlock()
	return p.initialize(ctx)
}

func (p *Pipeline) initialize(ctx context.Context) error {
	tax := p.settings.Taxonomy
	var folders Folders

	roots := []struct {
		name string
		dst  *store.FolderID
	}{
		{tax.IntakeFolder, &folders.Intake},
		{tax.OutputFolder, &folders.Output},
		{tax.InterestsFolder, &folders.Interests},
	}
	for _, root := range roots {
		id, err := p.resolver.ResolveOrCreate(ctx, store.Root, root.name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", root.name, err)
		}
		*root.dst = id
	}

	for _, category := range contracts.Categories() {
		id, err := p.resolver.ResolveOrCreate(ctx, folders.Output, string(category))
		if err != nil {
			return fmt.Errorf("resolve category %s: %w", category, err)
		}
		p.categories[category] = id
	}

	p.statusMu.Lock()
	p.folders = folders
	p.statusMu.Unlock()

	p.logger.InfoContext(ctx, "taxonomy initialized",
		"intake", folders.Intake,
		"output", folders.Output,
		"interests", folders.Interests,
		"categories", len(p.categories),
	)
	return nil
}

// roots returns the resolved taxonomy roots; they are empty until Initialize succeeds.
func (p *Pipeline) roots() Folders {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.folders
}

// categoryFolder returns the cached category folder, resolving it when absent.
func (p *Pipeline) categoryFolder(ctx context.Context, category contracts.Category) (store.FolderID, error) {
	if id, ok := p.categories[category]; ok {
		return id, nil
	}
	id, err := p.resolver.ResolveOrCreate(ctx, p.roots().Output, string(category))
	if err != nil {
		return "", err
	}
	p.categories[category] = id
	return id, nil
}

// discover lists the intake folder and returns the contract identities in listing order.
func (p *Pipeline) discover(ctx context.Context) ([]contracts.Identity, error) {
	intake := p.roots().Intake
	if intake == "" {
		return nil, ErrNotInitialized
	}
	items, err := p.store.ListChildren(ctx, intake)
	if err != nil {
		return nil, fmt.Errorf("list intake folder: %w", err)
	}
	return p.filter.Identify(items), nil
}

// Status is a snapshot of pipeline state for operators.
type Status struct {
	Ready     bool         `json:"ready"`
	Folders   Folders      `json:"folders"`
	Ledger    string       `json:"ledger"`
	LastPass  *Report      `json:"last_pass,omitempty"`
	LastSweep *SweepReport `json:"last_sweep,omitempty"`
}

// Status returns the most recent pass and sweep reports.
func (p *Pipeline) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	return Status{
		Ready:     p.folders.Intake != "",
		Folders:   p.folders,
		Ledger:    p.ledger.Backend(),
		LastPass:  p.lastPass,
		LastSweep: p.lastSweep,
	}
}

// Contracts lists the current intake contracts with their ledger entries.
func (p *Pipeline) Contracts(ctx context.Context) ([]ContractState, error) {
	ids, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}

	states := make([]ContractState, 0, len(ids))
	for _, id := range ids {
		entry, found, err := p.ledger.Lookup(ctx, id.Key())
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", id.Key(), err)
		}
		state := ContractState{Identity: id}
		if found {
			state.Entry = &entry
			state.Settled = entry.Settled(p.settings.MaxAttempts)
		}
		states = append(states, state)
	}
	return states, nil
}

// ContractState pairs an intake contract with its ledger entry, if any.
type ContractState struct {
	contracts.Identity
	Entry   *ledger.Entry `json:"entry,omitempty"`
	Settled bool          `json:"settled"`
}
