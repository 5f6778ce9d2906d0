package chunking

import (
	"strings"
	"unicode"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

type Splitter struct {
	MinChunkSize int
	MaxChunkSize int
}

func NewSplitter(minChunkSize, maxChunkSize int) *Splitter {
	if minChunkSize <= 0 {
		minChunkSize = 300
	}
	if maxChunkSize <= minChunkSize {
		maxChunkSize = 1500
	}
	return &Splitter{
		MinChunkSize: minChunkSize,
		MaxChunkSize: maxChunkSize,
	}
}

// SplitPages turns ordered per-page text into chunks with one-sentence
// overlap between adjacent chunks on the same page. Pages are 1-based.
// Empty pages and pages yielding no relevant chunks are skipped.
func (s *Splitter) SplitPages(pages []string) []domain.Chunk {
	var out []domain.Chunk
	for i, page := range pages {
		for _, text := range s.splitPage(page) {
			if !relevant(text) {
				continue
			}
			out = append(out, domain.Chunk{Page: i + 1, Text: text})
		}
	}
	return out
}

func (s *Splitter) splitPage(page string) []string {
	page = strings.TrimSpace(page)
	if page == "" {
		return nil
	}

	sentences := splitSentences(page)
	var chunks []string
	var buf []string
	bufLen := 0

	for _, sentence := range sentences {
		if bufLen > 0 && bufLen+1+len(sentence) > s.MaxChunkSize && bufLen >= s.MinChunkSize {
			chunks = append(chunks, strings.Join(buf, " "))
			// Seed the next buffer with the last sentence for overlap.
			last := buf[len(buf)-1]
			buf = []string{last, sentence}
			bufLen = len(last) + 1 + len(sentence)
			continue
		}
		buf = append(buf, sentence)
		if bufLen == 0 {
			bufLen = len(sentence)
		} else {
			bufLen += 1 + len(sentence)
		}
	}

	// The trailing buffer is the one chunk allowed below MinChunkSize;
	// otherwise short pages would vanish entirely.
	if bufLen > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// splitSentences breaks text on boundary punctuation followed by whitespace
// and an uppercase letter. The uppercase requirement is conservative: it
// avoids splitting on abbreviations like "e.g." mid-sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isBoundaryPunct(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) || !unicode.IsUpper(runes[j]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, collapseSpace(sentence))
		}
		start = j
		i = j - 1
	}

	tail := strings.TrimSpace(string(runes[start:]))
	if tail != "" {
		sentences = append(sentences, collapseSpace(tail))
	}
	return sentences
}

func isBoundaryPunct(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == ';'
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// relevant keeps chunks that either hit the security vocabulary or state a
// concrete requirement (a numeral or an action verb).
func relevant(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range domain.SecurityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, r := range lower {
		if unicode.IsDigit(r) {
			return true
		}
	}
	for _, verb := range domain.ActionVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
