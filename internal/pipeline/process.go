package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/counsel/internal/contracts"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/formatting"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/store"
)

// ErrContractTooLarge indicates contract text above the configured size limit.
var ErrContractTooLarge = errors.New("contract exceeds maximum size")

// ProcessNewContracts runs one discovery pass: every intake contract whose identity is
// not settled in the ledger is processed, in listing order. Per-contract failures are
// recorded in the report; only a failure to list the intake folder fails the pass.
func (p *Pipeline) ProcessNewContracts(ctx context.Context) (*Report, error) {
	p.run.Lock()
	defer p.run.Unlock()

	report := &Report{
		PassID:    uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := p.logger.With("pass_id", report.PassID)

	ids, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}
	report.Discovered = len(ids)
	if c, ok := p.ledger.(ledger.Cycler); ok {
		c.BeginCycle()
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "discovery pass interrupted", "remaining", len(ids)-report.Processed()-report.Skipped)
			break
		}

		entry, found, err := p.ledger.Lookup(ctx, id.Key())
		if err != nil {
			logger.ErrorContext(ctx, "ledger lookup failed, skipping contract for this pass",
				"contract", id.Name,
				"error", err,
			)
			report.Skipped++
			continue
		}
		if found && entry.Settled(p.settings.MaxAttempts) {
			report.Skipped++
			continue
		}

		report.Outcomes = append(report.Outcomes, p.processContract(ctx, id, logger))
	}

	report.Duration = time.Since(report.StartedAt)
	p.statusMu.Lock()
	p.lastPass = report
	p.statusMu.Unlock()

	logger.InfoContext(ctx, "discovery pass complete",
		"discovered", report.Discovered,
		"processed", report.Processed(),
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	return report, nil
}

// ProcessContract processes one contract regardless of its ledger state and records
// the attempt.
func (p *Pipeline) ProcessContract(ctx context.Context, id contracts.Identity) Outcome {
	p.run.Lock()
	defer p.run.Unlock()
	return p.processContract(ctx, id, p.logger)
}

func (p *Pipeline) processContract(ctx context.Context, id contracts.Identity, logger *slog.Logger) Outcome {
	logger = logger.With("contract", id.Name, "file_id", id.FileID)
	logger.InfoContext(ctx, "processing contract")

	out := p.generateArtifactSet(ctx, id, logger)

	entry, err := p.ledger.Record(ctx, id.Key(), out.Status == StatusCompleted)
	if err != nil {
		logger.ErrorContext(ctx, "ledger record failed", "error", err)
	} else {
		out.Attempts = entry.Attempts
	}

	switch out.Status {
	case StatusFailed:
		logger.ErrorContext(ctx, "contract processing failed", "attempts", out.Attempts, "error", out.Error)
	case StatusDegraded:
		logger.WarnContext(ctx, "contract processed with placeholders",
			"category", out.Category,
			"placeholders", out.Placeholders,
			"attempts", out.Attempts,
		)
	default:
		logger.InfoContext(ctx, "contract processed", "category", out.Category)
	}
	return out
}

func (p *Pipeline) generateArtifactSet(ctx context.Context, id contracts.Identity, logger *slog.Logger) Outcome {
	out := Outcome{Identity: id, Status: StatusFailed}

	text, err := p.store.ReadText(ctx, id.FileID)
	if err != nil {
		out.Error = fmt.Sprintf("read contract: %v", err)
		return out
	}
	if limit := p.settings.Processing.MaxContractSizeBytes(); int64(len(text)) > limit {
		out.Error = fmt.Sprintf("%v: %s > %s", ErrContractTooLarge,
			formatting.FormatBytes(int64(len(text)), 1),
			formatting.FormatBytes(limit, 1),
		)
		return out
	}

	out.Category = p.classifier.Classify(ctx, id, text)
	guidance := p.guidance(ctx, id, logger)

	mirror, err := p.mirrorFolder(ctx, id, out.Category)
	if err != nil {
		out.Error = fmt.Sprintf("resolve output folder: %v", err)
		return out
	}

	analysis := prompts.Analysis(
		string(out.Category),
		prompts.Excerpt(text, p.settings.Processing.ContextExcerpt),
		guidance,
	)

	contents := make([]string, len(p.artifacts))
	failures := make([]error, len(p.artifacts))

	var g errgroup.Group
	g.SetLimit(p.settings.Processing.Concurrency)
	for i, spec := range p.artifacts {
		g.Go(func() error {
			contents[i], failures[i] = p.generateArtifact(ctx, spec, analysis)
			return nil
		})
	}
	g.Wait()

	var uploadErrs []error
	for i, spec := range p.artifacts {
		content := contents[i]
		if failures[i] != nil {
			logger.WarnContext(ctx, "artifact generation failed, using placeholder",
				"artifact", spec.stage,
				"error", failures[i],
			)
			content = placeholder(spec.stage, id, out.Category, text, guidance, failures[i])
			out.Placeholders++
		}

		data := p.renderer.Render(content, spec.format)
		if _, err := p.store.WriteFile(ctx, mirror, spec.fileName(), data); err != nil {
			uploadErrs = append(uploadErrs, fmt.Errorf("upload %s: %w", spec.fileName(), err))
			continue
		}

		logger.DebugContext(ctx, "artifact uploaded",
			"file", spec.fileName(),
			"size", formatting.FormatBytes(int64(len(data)), 1),
		)
		out.Artifacts = append(out.Artifacts, spec.fileName())
	}

	if err := errors.Join(uploadErrs...); err != nil {
		out.Error = err.Error()
		return out
	}

	out.Status = StatusCompleted
	if out.Placeholders > 0 {
		out.Status = StatusDegraded
	}
	return out
}

func (p *Pipeline) generateArtifact(ctx context.Context, spec artifactSpec, analysis string) (string, error) {
	prompt, err := prompts.Artifact(spec.stage, analysis)
	if err != nil {
		return "", err
	}

	text, err := p.gen.Generate(ctx, prompt, p.settings.Sampling)
	if err != nil {
		return "", err
	}
	if !usable(text) {
		return "", fmt.Errorf("response too short: %d characters", len(text))
	}
	return text, nil
}

// mirrorFolder resolves output-root/category/{name}{mirror suffix}.
func (p *Pipeline) mirrorFolder(ctx context.Context, id contracts.Identity, category contracts.Category) (store.FolderID, error) {
	parent, err := p.categoryFolder(ctx, category)
	if err != nil {
		return "", err
	}
	return p.resolver.ResolveOrCreate(ctx, parent, p.settings.Taxonomy.MirrorFolder(id.Name))
}

// guidance loads the global interests file and the contract's instruction sidecar.
// Either may be absent; read failures are logged and treated as absence.
func (p *Pipeline) guidance(ctx context.Context, id contracts.Identity, logger *slog.Logger) prompts.Guidance {
	roots := p.roots()
	var g prompts.Guidance

	if roots.Interests != "" {
		g.Interests = p.readOptional(ctx, roots.Interests, p.settings.Taxonomy.InterestsFile, logger)
	}
	g.Instructions = p.readOptional(ctx, roots.Intake, p.filter.SidecarName(id.Name), logger)

	logger.DebugContext(ctx, "guidance loaded",
		"interests", g.Interests != "",
		"instructions", g.Instructions != "",
	)
	return g
}

func (p *Pipeline) readOptional(ctx context.Context, folder store.FolderID, name string, logger *slog.Logger) string {
	file, found, err := store.FindFile(ctx, p.store, folder, name)
	if err != nil {
		logger.WarnContext(ctx, "guidance lookup failed", "file", name, "error", err)
		return ""
	}
	if !found {
		return ""
	}

	text, err := p.store.ReadText(ctx, file)
	if err != nil {
		logger.WarnContext(ctx, "guidance read failed", "file", name, "error", err)
		return ""
	}
	return text
}
