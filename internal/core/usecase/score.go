package usecase

import (
	"sort"
	"strings"
	"unicode"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

// scoreChunk is a prioritization heuristic, not a correctness filter: longer
// keywords weigh double, digit runs and action verbs add smaller boosts.
func scoreChunk(text string) float64 {
	lower := strings.ToLower(text)

	score := 0.0
	for _, kw := range domain.SecurityKeywords {
		n := strings.Count(lower, kw)
		if n == 0 {
			continue
		}
		weight := 1.0
		if len(kw) > 5 {
			weight = 2.0
		}
		score += float64(n) * weight
	}

	score += 0.5 * float64(countDigitRuns(lower))

	for _, verb := range domain.ActionVerbs {
		score += float64(strings.Count(lower, verb))
	}
	return score
}

func countDigitRuns(s string) int {
	runs := 0
	inRun := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			if !inRun {
				runs++
				inRun = true
			}
			continue
		}
		inRun = false
	}
	return runs
}

// estimateTokens approximates tokens as ceil(utf8 bytes / 4).
func estimateTokens(s string) int {
	n := len(s)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

func estimateChunkTokens(chunks []domain.Chunk) int {
	total := 0
	for _, c := range chunks {
		total += estimateTokens(c.Text)
	}
	return total
}

// truncateToBudget drops the lowest-scoring 20% of chunks when the serialized
// set would exceed the token budget, keeping original order for the survivors.
// Within budget the input passes through untouched.
func truncateToBudget(chunks []domain.Chunk, tokenBudget int) []domain.Chunk {
	if tokenBudget <= 0 || len(chunks) == 0 {
		return chunks
	}
	if estimateChunkTokens(chunks) <= tokenBudget {
		return chunks
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{index: i, score: scoreChunk(c.Text)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	keepCount := (len(chunks)*4 + 4) / 5
	if keepCount < 1 {
		keepCount = 1
	}
	keep := make(map[int]struct{}, keepCount)
	for _, r := range ranked[:keepCount] {
		keep[r.index] = struct{}{}
	}

	out := make([]domain.Chunk, 0, keepCount)
	for i, c := range chunks {
		if _, ok := keep[i]; ok {
			out = append(out, c)
		}
	}
	return out
}
