package prompts_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/counsel/internal/prompts"
)

func TestParseStage(t *testing.T) {
	for _, s := range prompts.Stages() {
		if _, err := prompts.ParseStage(string(s)); err != nil {
			t.Errorf("stage %s: %v", s, err)
		}
	}

	if _, err := prompts.ParseStage("finalize"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("unknown stage: got %v", err)
	}
}

func TestInstructions(t *testing.T) {
	for _, s := range prompts.ArtifactStages {
		text, err := prompts.Instructions(s)
		if err != nil || text == "" {
			t.Errorf("stage %s: %q %v", s, text, err)
		}
	}

	if _, err := prompts.Instructions(prompts.StageClassify); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("classify has no appended instructions, got %v", err)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"truncated", "abcdef", 3, "abc..."},
		{"multibyte", "ééééé", 2, "éé..."},
		{"no limit", "abcdef", 0, "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.Excerpt(tt.text, tt.limit); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	p := prompts.Classify([]string{"Service Contract", "Employment Contract"}, "EMPLOYMENT AGREEMENT")

	for _, want := range []string{"- Service Contract\n", "- Employment Contract\n", "EMPLOYMENT AGREEMENT", "ONLY the exact category name"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAnalysisVariants(t *testing.T) {
	tests := []struct {
		name     string
		guidance prompts.Guidance
		contains []string
		excludes []string
	}{
		{
			name:     "no guidance",
			guidance: prompts.Guidance{},
			contains: []string{"fairer, more balanced version", "CONTRACT TYPE: Lease and Rent Agreement"},
			excludes: []string{"USER'S GENERAL INTERESTS", "take priority"},
		},
		{
			name:     "interests only",
			guidance: prompts.Guidance{Interests: "Keep my deposit refundable"},
			contains: []string{"safeguards the user's interests", "USER'S GENERAL INTERESTS:\nKeep my deposit refundable"},
			excludes: []string{"take priority", "SPECIFIC INSTRUCTIONS"},
		},
		{
			name:     "interests and sidecar",
			guidance: prompts.Guidance{Interests: "Keep my deposit refundable", Instructions: "Cap rent increases at 3%"},
			contains: []string{"SPECIFIC INSTRUCTIONS FOR THIS CONTRACT:\nCap rent increases at 3%", "Per-contract instructions take priority over general interests"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prompts.Analysis("Lease and Rent Agreement", "LEASE TEXT", tt.guidance)
			for _, want := range tt.contains {
				if !strings.Contains(p, want) {
					t.Errorf("missing %q", want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(p, bad) {
					t.Errorf("unexpected %q", bad)
				}
			}
		})
	}
}

func TestArtifact(t *testing.T) {
	p, err := prompts.Artifact(prompts.StageRedline, "CONTEXT")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p, "CONTEXT\n") || !strings.Contains(p, "redline comparison (File 2)") {
		t.Errorf("unexpected prompt: %q", p)
	}
}

func TestActionItems(t *testing.T) {
	today := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	p := prompts.ActionItems("PAYMENT DUE", today)

	for _, want := range []string{"Today's date is 2025-01-10", "PAYMENT DUE", "ACTION ITEM 1:", "No action items found."} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
