package usecase

import (
	"sort"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

const maxOptionsPerVulnerability = 5

// consolidateFindings groups validated findings by normalized vulnerability
// text, merges and deduplicates their options, and caps each option list.
// Group order follows first appearance, keeping the result deterministic.
// Category is first-wins; disagreements within a group are counted so the
// homogeneity assumption stays observable.
func consolidateFindings(findings []domain.Finding, newID func() string) ([]domain.ConsolidatedVulnerability, int) {
	type group struct {
		vuln    domain.ConsolidatedVulnerability
		optKeys map[string]struct{}
	}

	var order []string
	groups := make(map[string]*group)
	categoryMismatches := 0

	for _, f := range findings {
		key := normalizeVulnKey(f.Vulnerability)
		g, ok := groups[key]
		if !ok {
			g = &group{
				vuln: domain.ConsolidatedVulnerability{
					ID:            newID(),
					Category:      f.Category,
					Vulnerability: f.Vulnerability,
				},
				optKeys: make(map[string]struct{}),
			}
			groups[key] = g
			order = append(order, key)
		} else if g.vuln.Category != f.Category {
			categoryMismatches++
		}

		for _, opt := range f.Options {
			optKey := normalizeOptionKey(opt.OptionText)
			if _, dup := g.optKeys[optKey]; dup {
				continue
			}
			g.optKeys[optKey] = struct{}{}
			g.vuln.Options = append(g.vuln.Options, opt)
		}
	}

	out := make([]domain.ConsolidatedVulnerability, 0, len(order))
	for _, key := range order {
		g := groups[key]
		// Longer option text is assumed more detailed; stable sort keeps the
		// first-occurrence order among equal lengths.
		sort.SliceStable(g.vuln.Options, func(i, j int) bool {
			return len(g.vuln.Options[i].OptionText) > len(g.vuln.Options[j].OptionText)
		})
		if len(g.vuln.Options) > maxOptionsPerVulnerability {
			g.vuln.Options = g.vuln.Options[:maxOptionsPerVulnerability]
		}
		if len(g.vuln.Options) == 0 {
			continue
		}
		out = append(out, g.vuln)
	}
	return out, categoryMismatches
}
