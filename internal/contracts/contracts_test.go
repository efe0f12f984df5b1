package contracts_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/counsel/internal/contracts"
	"github.com/JaimeStill/counsel/pkg/generate"
	"github.com/JaimeStill/counsel/pkg/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var filter = contracts.Filter{
	Extensions:    []string{".pdf", ".doc", ".docx", ".txt"},
	SidecarSuffix: ".instructions",
}

func TestCategoriesOrder(t *testing.T) {
	cats := contracts.Categories()
	if len(cats) != 9 {
		t.Fatalf("categories: got %d, want 9", len(cats))
	}
	if cats[0] != contracts.DefaultCategory {
		t.Errorf("default is not the first category: %s", cats[0])
	}
	if contracts.CategoryNames()[8] != "Freelancer and Contractor Agreement" {
		t.Errorf("last category: %s", contracts.CategoryNames()[8])
	}
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   contracts.Category
		ok     bool
	}{
		{"exact", "Employment Contract", contracts.EmploymentContract, true},
		{"case and quotes", `"employment contract"`, contracts.EmploymentContract, true},
		{"trailing period", "Software License Agreement.", contracts.SoftwareLicense, true},
		{"answer contains name", "Category: Loan and Financing Contract", contracts.LoanContract, true},
		{"name contains answer", "NDA", contracts.NDA, true},
		{"multi line answer", "Lease and Rent Agreement\nBecause it covers rent.", contracts.LeaseAgreement, true},
		{"exact beats earlier fuzzy", "Non-Disclosure Agreement (NDA)", contracts.NDA, true},
		{"not applicable", "N/A", "", false},
		{"empty", "   ", "", false},
		{"unrelated", "Recipe for pancakes", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := contracts.MatchCategory(tt.answer)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFilterIsContract(t *testing.T) {
	tests := []struct {
		file string
		want bool
	}{
		{"lease.pdf", true},
		{"Offer Letter.DOCX", true},
		{"notes.txt", true},
		{"legacy.doc", true},
		{"lease.instructions", false},
		{".DS_Store", false},
		{".hidden.pdf", false},
		{"~$lease.docx", false},
		{"photo.png", false},
		{"README", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := filter.IsContract(tt.file); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterIdentify(t *testing.T) {
	items := []store.Item{
		{ID: "f1", Name: "lease.pdf", Kind: store.KindFile},
		{ID: "f2", Name: "lease.instructions", Kind: store.KindFile},
		{ID: "d1", Name: "archive.pdf", Kind: store.KindFolder},
		{ID: "f3", Name: "offer.docx", Kind: store.KindFile, Version: "v2"},
	}

	ids := filter.Identify(items)
	if len(ids) != 2 {
		t.Fatalf("identities: got %d, want 2", len(ids))
	}
	if ids[0].Name != "lease" || ids[0].Key() != "lease_f1" {
		t.Errorf("first identity: %+v key=%s", ids[0], ids[0].Key())
	}
	if ids[1].Name != "offer" || ids[1].FileID != "f3" || ids[1].Key() != "offer_f3@v2" {
		t.Errorf("second identity: %+v", ids[1])
	}
	if filter.SidecarName(ids[0].Name) != "lease.instructions" {
		t.Errorf("sidecar: %s", filter.SidecarName(ids[0].Name))
	}
}

func TestIdentityDistinguishesReuploads(t *testing.T) {
	tests := []struct {
		name string
		a, b contracts.Identity
	}{
		{
			"new file handle",
			contracts.Identity{Name: "lease", FileID: "f1"},
			contracts.Identity{Name: "lease", FileID: "f9"},
		},
		{
			"same handle new version",
			contracts.Identity{Name: "lease", FileID: "Smart_Contracts/lease.pdf", Version: "0x8DC1"},
			contracts.Identity{Name: "lease", FileID: "Smart_Contracts/lease.pdf", Version: "0x8DC2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Key() == tt.b.Key() {
				t.Errorf("keys collide: %s", tt.a.Key())
			}
		})
	}
}

func TestClassifier(t *testing.T) {
	id := contracts.Identity{Name: "offer", FileID: "f1"}
	long := strings.Repeat("x", 5000)

	tests := []struct {
		name  string
		reply string
		err   error
		want  contracts.Category
	}{
		{"recognized", "Employment Contract", nil, contracts.EmploymentContract},
		{"unrecognized", "N/A", nil, contracts.DefaultCategory},
		{"model failure", "", errors.New("throttled"), contracts.DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt string
			gen := generate.Func(func(ctx context.Context, p string, opts generate.Options) (string, error) {
				prompt = p
				return tt.reply, tt.err
			})

			c := contracts.NewClassifier(gen, 3000, discard())
			if got := c.Classify(context.Background(), id, long); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}

			if !strings.Contains(prompt, strings.Repeat("x", 3000)) {
				t.Error("prompt is missing the contract excerpt")
			}
			if strings.Contains(prompt, strings.Repeat("x", 3001)) {
				t.Error("excerpt exceeds the classification limit")
			}
		})
	}
}
