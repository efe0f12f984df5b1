package actions

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrMalformedItem = errors.New("malformed action item")
)

var (
	itemMarker   = regexp.MustCompile(`(?i)ACTION ITEM\s*\d+:`)
	typeField    = regexp.MustCompile(`(?i)Type:\s*(\w+)`)
	descField    = regexp.MustCompile(`(?i)Description:[ \t]*([^\n]*?)[ \t]*(?:Due Date:|\n|$)`)
	dueField     = regexp.MustCompile(`(?i)Due Date:\s*(\d{4}-\d{2}-\d{2})`)
	priorityFld  = regexp.MustCompile(`(?i)Priority:\s*(\w+)`)
	actionField  = regexp.MustCompile(`(?is)Action Required:\s*(.+?)(?:\n\n|\z)`)
	numericDate  = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	longFormDate = regexp.MustCompile(`(?i)\b((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)
)

const noItems = "no action items found"

// Parser turns the templated deadline-extraction response into Items.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser. now supplies the current date for day counts;
// nil uses time.Now.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse extracts the action items in response, attributing each to contract.
// Segments that cannot be parsed are skipped; the returned error joins their
// failures and is non-nil even when valid items were produced.
func (p *Parser) Parse(response, contract string) ([]Item, error) {
	if strings.TrimSpace(response) == "" || strings.Contains(strings.ToLower(response), noItems) {
		return nil, nil
	}

	today := dateOf(p.now())
	segments := itemMarker.Split(response, -1)

	var items []Item
	var errs []error
	for i, seg := range segments {
		if i == 0 {
			continue
		}
		item, err := parseSegment(seg, contract, today)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		items = append(items, item)
	}

	return items, errors.Join(errs...)
}

func parseSegment(seg, contract string, today time.Time) (Item, error) {
	kind := submatch(typeField, seg)
	if kind == "" {
		return Item{}, fmt.Errorf("%w: missing type", ErrMalformedItem)
	}
	desc := submatch(descField, seg)
	if desc == "" {
		return Item{}, fmt.Errorf("%w: missing description", ErrMalformedItem)
	}

	item := Item{
		Kind:           ParseKind(kind),
		Description:    desc,
		Priority:       ParsePriority(submatch(priorityFld, seg)),
		ActionRequired: submatch(actionField, seg),
		SourceContract: contract,
	}

	if raw := submatch(dueField, seg); raw != "" {
		due, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return Item{}, fmt.Errorf("%w: due date %q: %w", ErrMalformedItem, raw, err)
		}
		days := int(due.Sub(today).Hours() / 24)
		item.DueDate = raw
		item.Due = &due
		item.DaysUntilDue = &days
		return item, nil
	}

	if m := submatch(numericDate, seg); m != "" {
		item.DueDate = m
	} else if m := submatch(longFormDate, seg); m != "" {
		item.DueDate = m
	}

	return item, nil
}

func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// dateOf truncates t to its calendar date at UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
