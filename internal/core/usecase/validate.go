package usecase

import (
	"strings"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

const (
	minVulnerabilityLen = 10
	maxVulnerabilityLen = 500
	minOptionLen        = 10
	maxOptionLen        = 300
	minSourceLen        = 6
	maxSourceLen        = 199
)

type validationStats struct {
	rejectedFindings int
	rejectedOptions  int
	rejectedSources  int
}

// validateFindings drops malformed findings, options and sources. Nothing is
// repaired or default-filled: a finding survives only with a known category,
// an in-range vulnerability statement and at least one fully valid option.
func validateFindings(findings []domain.Finding) ([]domain.Finding, validationStats) {
	var stats validationStats
	var valid []domain.Finding

	for _, f := range findings {
		category := strings.ToLower(strings.TrimSpace(f.Category))
		if category == "" || !domain.KnownCategory(category) {
			stats.rejectedFindings++
			continue
		}
		vuln := strings.TrimSpace(f.Vulnerability)
		if len(vuln) < minVulnerabilityLen || len(vuln) > maxVulnerabilityLen {
			stats.rejectedFindings++
			continue
		}

		options := make([]domain.OptionCandidate, 0, len(f.Options))
		for _, opt := range f.Options {
			cleaned, ok := validateOption(opt, &stats)
			if !ok {
				stats.rejectedOptions++
				continue
			}
			options = append(options, cleaned)
		}
		if len(options) == 0 {
			stats.rejectedFindings++
			continue
		}

		valid = append(valid, domain.Finding{
			Category:      category,
			Vulnerability: vuln,
			Options:       options,
		})
	}
	return valid, stats
}

func validateOption(opt domain.OptionCandidate, stats *validationStats) (domain.OptionCandidate, bool) {
	text := strings.TrimSpace(opt.OptionText)
	if len(text) < minOptionLen || len(text) > maxOptionLen {
		return domain.OptionCandidate{}, false
	}

	sources := make([]domain.Source, 0, len(opt.Sources))
	for _, src := range opt.Sources {
		srcText := strings.TrimSpace(src.SourceText)
		if len(srcText) < minSourceLen || len(srcText) > maxSourceLen || src.ReferenceNumber <= 0 {
			stats.rejectedSources++
			continue
		}
		sources = append(sources, domain.Source{
			ReferenceNumber: src.ReferenceNumber,
			SourceText:      srcText,
		})
	}
	if len(sources) == 0 {
		return domain.OptionCandidate{}, false
	}

	return domain.OptionCandidate{
		OptionText:          text,
		Sources:             sources,
		LinkedVulnerability: opt.LinkedVulnerability,
	}, true
}
