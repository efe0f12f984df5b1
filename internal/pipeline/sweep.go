package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/actions"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/generate"
	"github.com/JaimeStill/counsel/pkg/store"
)

// extractionTemperature keeps deadline extraction close to deterministic.
const extractionTemperature = 0.1

// Sweep scans every intake contract for action items, independent of the ledger, and
// sends one alert covering all urgent items. Contracts that cannot be read or analyzed
// are logged and skipped.
func (p *Pipeline) Sweep(ctx context.Context) (*SweepReport, error) {
	p.run.Lock()
	defer p.run.Unlock()

	report := &SweepReport{
		SweepID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := p.logger.With("sweep_id", report.SweepID)

	ids, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}

	var all []actions.Item
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "sweep interrupted", "error", err)
			break
		}

		items, err := p.extract(ctx, id.FileID, id.Name)
		if err != nil {
			logger.WarnContext(ctx, "action item extraction failed",
				"contract", id.Name,
				"error", err,
			)
			report.Failed = append(report.Failed, id.Name)
			continue
		}

		report.Scanned++
		all = append(all, items...)
	}

	report.Items = len(all)
	report.Urgent = p.settings.Policy.FilterUrgent(all)

	if len(report.Urgent) > 0 {
		report.Recipient = p.recipient(ctx)
		alert := actions.NewAlert(report.Urgent)

		if err := p.notifier.Send(ctx, alert.Subject, alert.Body); err != nil {
			report.Error = err.Error()
			logger.ErrorContext(ctx, "alert delivery failed", "urgent", len(report.Urgent), "error", err)
		} else {
			report.Notified = true
			logger.InfoContext(ctx, "alert sent",
				"urgent", len(report.Urgent),
				"recipient", report.Recipient,
			)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	p.statusMu.Lock()
	p.lastSweep = report
	p.statusMu.Unlock()

	logger.InfoContext(ctx, "action item sweep complete",
		"scanned", report.Scanned,
		"failed", len(report.Failed),
		"items", report.Items,
		"urgent", len(report.Urgent),
		"duration", report.Duration,
	)
	return report, nil
}

func (p *Pipeline) extract(ctx context.Context, file store.FileID, contract string) ([]actions.Item, error) {
	text, err := p.store.ReadText(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("read contract: %w", err)
	}

	prompt := prompts.ActionItems(
		prompts.Excerpt(text, p.settings.Processing.ActionItemsExcerpt),
		p.settings.Now(),
	)

	resp, err := p.gen.Generate(ctx, prompt, generate.Options{
		MaxTokens:   p.settings.Sampling.MaxTokens,
		Temperature: extractionTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	items, err := p.parser.Parse(resp, contract)
	if err != nil {
		p.logger.WarnContext(ctx, "skipped malformed action items", "contract", contract, "error", err)
	}
	return items, nil
}

// recipient is the configured alert recipient, else the store account identity.
func (p *Pipeline) recipient(ctx context.Context) string {
	if p.settings.Recipient != "" {
		return p.settings.Recipient
	}
	account, err := p.store.CurrentAccount(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "current account lookup failed", "error", err)
		return ""
	}
	return account
}
