package pipeline

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/contracts"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/render"
)

// minResponseChars is the fewest non-space characters a usable artifact can have.
const minResponseChars = 10

type artifactSpec struct {
	stage    prompts.Stage
	baseName string
	format   render.Format
}

func (a artifactSpec) fileName() string {
	return a.baseName + a.format.Extension()
}

func artifactSpecs(cfg *config.RenderConfig) []artifactSpec {
	mirror, redline, negotiation := cfg.Formats()
	return []artifactSpec{
		{prompts.StageMirror, "1_mirror_contract_protecting_YOUR_interests", mirror},
		{prompts.StageRedline, "2_clean_redline_comparison", redline},
		{prompts.StageNegotiation, "3_negotiation_guide", negotiation},
	}
}

// usable reports whether a model response has enough content to publish.
func usable(text string) bool {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
			if n >= minResponseChars {
				return true
			}
		}
	}
	return false
}

// placeholder builds the labeled stand-in uploaded when an artifact cannot be generated.
func placeholder(stage prompts.Stage, id contracts.Identity, category contracts.Category, text string, g prompts.Guidance, cause error) string {
	var b strings.Builder

	switch stage {
	case prompts.StageMirror:
		b.WriteString("# MIRROR CONTRACT - PROTECTING YOUR INTERESTS\n\n")
	case prompts.StageRedline:
		b.WriteString("# REDLINE COMPARISON DOCUMENT\n\n")
	case prompts.StageNegotiation:
		b.WriteString("# NEGOTIATION GUIDE\n\n")
	}

	fmt.Fprintf(&b, "Contract: %s\n", id.Name)
	fmt.Fprintf(&b, "Category: %s\n\n", category)

	if s := strings.TrimSpace(g.Interests); s != "" {
		fmt.Fprintf(&b, "# YOUR INTERESTS\n\n%s\n\n", s)
	}
	if s := strings.TrimSpace(g.Instructions); s != "" {
		fmt.Fprintf(&b, "# SPECIFIC INSTRUCTIONS\n\n%s\n\n", s)
	}

	switch stage {
	case prompts.StageMirror:
		fmt.Fprintf(&b, "# ORIGINAL CONTRACT EXCERPT\n\n%s\n\n", prompts.Excerpt(text, 2000))
	case prompts.StageRedline:
		fmt.Fprintf(&b, "# ORIGINAL CONTRACT EXCERPT\n\n%s\n\n", prompts.Excerpt(text, 1000))
	case prompts.StageNegotiation:
		b.WriteString("# KEY AREAS TO REVIEW\n\n")
		for _, area := range []string{
			"Termination clauses and notice periods",
			"Payment terms and late fees",
			"Liability limits and indemnification",
			"Intellectual property ownership",
			"Non-compete and confidentiality scope",
			"Dispute resolution and governing law",
		} {
			fmt.Fprintf(&b, "- %s\n", area)
		}
		b.WriteString("\n")
	}

	b.WriteString("# GENERATION PENDING\n\n")
	b.WriteString("This document is a placeholder. Automated generation did not produce usable content")
	if cause != nil {
		fmt.Fprintf(&b, " (%v)", cause)
	}
	b.WriteString(". Review the original contract manually or upload it again to regenerate.\n")

	return b.String()
}
