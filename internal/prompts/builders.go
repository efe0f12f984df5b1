package prompts

import (
	"fmt"
	"strings"
	"time"
)

// Guidance is the optional user direction for one contract. Instructions come from the
// contract's sidecar file and take priority over the global Interests.
type Guidance struct {
	Interests    string
	Instructions string
}

// Empty reports whether no guidance was supplied.
func (g Guidance) Empty() bool {
	return strings.TrimSpace(g.Interests) == "" && strings.TrimSpace(g.Instructions) == ""
}

// Excerpt returns at most limit runes of text, marking truncation with an ellipsis.
func Excerpt(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + "..."
		}
		n++
	}
	return text
}

// Classify builds the single-answer category prompt.
func Classify(categories []string, excerpt string) string {
	var b strings.Builder
	b.WriteString("Analyze this contract and classify it into ONE of the following categories:\n\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nContract content (excerpt):\n")
	b.WriteString(excerpt)
	b.WriteString(`

IMPORTANT:
- Respond with ONLY the exact category name from the list above
- Choose the most appropriate category
- If it doesn't fit any category, choose the closest match
- Do not include any explanation, just the category name

Category:`)
	return b.String()
}

// Analysis builds the context shared by the three artifact prompts. With guidance the
// model is asked to protect the user's interests; without it, to make the contract
// fairer for both parties.
func Analysis(category, excerpt string, g Guidance) string {
	var b strings.Builder

	if g.Empty() {
		fmt.Fprintf(&b, `You are a contract analysis expert. Analyze this %[1]s and create a fairer, more balanced version.

CONTRACT TYPE: %[1]s

CONTRACT TO ANALYZE:
%[2]s

TASK:
1. Identify terms that are one-sided, unfair, or could be improved for balance
2. Identify non-negotiable terms (core business terms, pricing, deliverables) that must stay exactly as they are
3. Rewrite the contract to make it fairer and more balanced while keeping non-negotiables intact
4. Create a comparison showing all changes
5. Provide guidance on the improvements made

GUIDELINES:
- DO NOT change non-negotiable terms (core business terms, pricing, deliverables, key obligations)
- Make the contract more balanced and fair for both parties
- Improve clarity, add reasonable protections, and ensure mutual obligations
- Add fair termination clauses, reasonable notice periods, and balanced liability terms
- Maintain a professional tone and legal accuracy
- Keep changes reasonable and consistent with industry standards
- Consider %[1]s specific best practices
`, category, excerpt)
		return b.String()
	}

	fmt.Fprintf(&b, `You are a contract analysis expert. Analyze this %[1]s and create a protected version that safeguards the user's interests.

CONTRACT TYPE: %[1]s

CONTRACT TO ANALYZE:
%[2]s
`, category, excerpt)

	if s := strings.TrimSpace(g.Interests); s != "" {
		fmt.Fprintf(&b, "\nUSER'S GENERAL INTERESTS:\n%s\n", s)
	}
	if s := strings.TrimSpace(g.Instructions); s != "" {
		fmt.Fprintf(&b, "\nSPECIFIC INSTRUCTIONS FOR THIS CONTRACT:\n%s\n", s)
		if strings.TrimSpace(g.Interests) != "" {
			b.WriteString("\nNOTE: Per-contract instructions take priority over general interests.\n")
		}
	}

	fmt.Fprintf(&b, `
TASK:
1. Identify terms that need to change to protect the user's interests
2. Identify non-negotiable terms that must stay exactly as they are
3. Rewrite the contract protecting the user's interests while remaining fair
4. Create a comparison showing all changes
5. Provide negotiation guidance

GUIDELINES:
- Keep non-negotiables exactly as specified
- Make changes that protect the user's interests while being fair
- Maintain a professional tone and legal accuracy
- Keep changes reasonable and defensible
- Consider %s specific concerns and industry standards
`, category)

	return b.String()
}

// Artifact appends the stage instructions to the shared analysis context.
func Artifact(stage Stage, analysis string) (string, error) {
	text, err := Instructions(stage)
	if err != nil {
		return "", err
	}
	return analysis + "\n" + text, nil
}

// ActionItems builds the deadline extraction prompt. today anchors the model's
// day counts; the parser recomputes them regardless.
func ActionItems(excerpt string, today time.Time) string {
	return fmt.Sprintf(`Analyze this contract and identify any time-sensitive action items or deadlines.
Today's date is %s.

Look for:
1. Contract expiration dates
2. Payment due dates
3. Audit deadlines
4. Renewal deadlines
5. Notice periods that need action
6. Any other time-sensitive obligations

Contract content:
%s

%s`, today.Format(time.DateOnly), excerpt, actionItemsSpec)
}
