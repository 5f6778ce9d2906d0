package usecase

import (
	"testing"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

func finding(vuln string) domain.Finding {
	return domain.Finding{
		Category:      "physical security",
		Vulnerability: vuln,
		Options: []domain.OptionCandidate{{
			OptionText: "Harden the affected entry point.",
			Sources:    []domain.Source{{ReferenceNumber: 1, SourceText: "page one clause"}},
		}},
	}
}

func TestMergePrimaryWinsOverEquivalentSecondary(t *testing.T) {
	primary := backendResult{
		cfg:      domain.ModelConfig{Name: "tuned", Role: domain.RolePrimary},
		findings: []domain.Finding{finding("Entrances lack video surveillance coverage.")},
	}
	secondary := backendResult{
		cfg: domain.ModelConfig{Name: "stock", Role: domain.RoleValidation},
		findings: []domain.Finding{
			// Same vulnerability under normalization: never appears.
			finding("entrances LACK video surveillance coverage"),
			finding("Perimeter fencing is absent on the north side."),
		},
	}

	merged := mergeBackendFindings([]backendResult{primary, secondary})
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged findings, got %d", len(merged))
	}
	if merged[0].Vulnerability != "Entrances lack video surveillance coverage." {
		t.Fatalf("primary finding not first: %q", merged[0].Vulnerability)
	}
	if merged[1].Vulnerability != "Perimeter fencing is absent on the north side." {
		t.Fatalf("novel secondary finding missing: %q", merged[1].Vulnerability)
	}
}

func TestMergePrimaryNotFirstInConfigOrder(t *testing.T) {
	results := []backendResult{
		{
			cfg:      domain.ModelConfig{Name: "checker", Role: domain.RoleCrossCheck},
			findings: []domain.Finding{finding("Visitor screening is not performed.")},
		},
		{
			cfg:      domain.ModelConfig{Name: "tuned", Role: domain.RolePrimary},
			findings: []domain.Finding{finding("visitor screening is NOT performed!")},
		},
	}

	merged := mergeBackendFindings(results)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged finding, got %d", len(merged))
	}
	if merged[0].Vulnerability != "visitor screening is NOT performed!" {
		t.Fatalf("primary's wording must win, got %q", merged[0].Vulnerability)
	}
}

func TestMergeEmptyPrimaryStillTakesSecondaries(t *testing.T) {
	results := []backendResult{
		{cfg: domain.ModelConfig{Name: "tuned", Role: domain.RolePrimary}},
		{
			cfg:      domain.ModelConfig{Name: "stock", Role: domain.RoleValidation},
			findings: []domain.Finding{finding("Exterior lighting is inadequate near exits.")},
		},
	}
	merged := mergeBackendFindings(results)
	if len(merged) != 1 {
		t.Fatalf("expected secondary finding to survive, got %d", len(merged))
	}
}

func TestMergeNoResults(t *testing.T) {
	if merged := mergeBackendFindings(nil); merged != nil {
		t.Fatalf("expected nil, got %v", merged)
	}
}
