package usecase

import "github.com/secdocs/guidance-extractor/internal/core/domain"

type backendResult struct {
	cfg      domain.ModelConfig
	findings []domain.Finding
}

// mergeBackendFindings reconciles one batch's outputs across backends. The
// primary backend's findings are taken verbatim; every other backend may only
// contribute findings whose normalized vulnerability text is novel. The
// asymmetry is deliberate: secondary backends catch clauses the primary
// missed, they never override it.
func mergeBackendFindings(results []backendResult) []domain.Finding {
	if len(results) == 0 {
		return nil
	}

	primaryIdx := 0
	for i, r := range results {
		if r.cfg.Role == domain.RolePrimary {
			primaryIdx = i
			break
		}
	}

	seen := make(map[string]struct{})
	var merged []domain.Finding
	for _, f := range results[primaryIdx].findings {
		merged = append(merged, f)
		seen[normalizeVulnKey(f.Vulnerability)] = struct{}{}
	}

	for i, r := range results {
		if i == primaryIdx {
			continue
		}
		for _, f := range r.findings {
			key := normalizeVulnKey(f.Vulnerability)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, f)
		}
	}
	return merged
}
