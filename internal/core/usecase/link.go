package usecase

import (
	"strings"
	"unicode"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

const defaultLinkThreshold = 0.45

// linkOptions reattaches options that arrived decoupled from a vulnerability.
// Every option without a linked_vulnerability id is scored against each
// vulnerability's context text by word-set Jaccard similarity; the best match
// at or above the threshold claims the option, otherwise it stays with the
// vulnerability it was extracted alongside. Vulnerabilities left without
// options after moves are dropped.
func linkOptions(vulns []domain.ConsolidatedVulnerability, threshold float64) []domain.ConsolidatedVulnerability {
	if threshold <= 0 {
		threshold = defaultLinkThreshold
	}
	if len(vulns) == 0 {
		return vulns
	}

	contexts := make([]map[string]struct{}, len(vulns))
	for i, v := range vulns {
		contexts[i] = significantTokens(v.Vulnerability + " " + v.Category)
	}

	moved := make([][]domain.OptionCandidate, len(vulns))
	for i := range vulns {
		kept := vulns[i].Options[:0:0]
		for _, opt := range vulns[i].Options {
			if opt.LinkedVulnerability != "" {
				kept = append(kept, opt)
				continue
			}

			bestIdx, bestScore := -1, 0.0
			optTokens := significantTokens(opt.OptionText)
			for j := range vulns {
				score := jaccard(optTokens, contexts[j])
				if score > bestScore {
					bestIdx, bestScore = j, score
				}
			}

			if bestIdx >= 0 && bestScore >= threshold {
				opt.LinkedVulnerability = vulns[bestIdx].ID
				if bestIdx != i {
					moved[bestIdx] = append(moved[bestIdx], opt)
					continue
				}
			} else {
				opt.LinkedVulnerability = vulns[i].ID
			}
			kept = append(kept, opt)
		}
		vulns[i].Options = kept
	}

	out := make([]domain.ConsolidatedVulnerability, 0, len(vulns))
	for i := range vulns {
		seen := make(map[string]struct{}, len(vulns[i].Options))
		for _, opt := range vulns[i].Options {
			seen[normalizeOptionKey(opt.OptionText)] = struct{}{}
		}
		for _, opt := range moved[i] {
			if _, dup := seen[normalizeOptionKey(opt.OptionText)]; dup {
				continue
			}
			seen[normalizeOptionKey(opt.OptionText)] = struct{}{}
			vulns[i].Options = append(vulns[i].Options, opt)
			vulns[i].Linked = true
		}
		if len(vulns[i].Options) > maxOptionsPerVulnerability {
			vulns[i].Options = vulns[i].Options[:maxOptionsPerVulnerability]
		}
		if len(vulns[i].Options) == 0 {
			continue
		}
		out = append(out, vulns[i])
	}
	return out
}

// jaccard computes |intersection| / |union| over token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// significantTokens case-folds and keeps tokens longer than two characters.
func significantTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() > 2 {
			out[b.String()] = struct{}{}
		}
		b.Reset()
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return out
}
