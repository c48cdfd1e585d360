package textmatch

import (
	"regexp"
	"strings"
)

var (
	sentenceBoundary  = regexp.MustCompile(`[.!?]+\s+`)
	paragraphBoundary = regexp.MustCompile(`\n\s*\n`)
)

// SplitSentences splits text into trimmed, non-empty sentence
// fragments, breaking on runs of '.', '!', '?' followed by whitespace.
// The final fragment keeps its trailing punctuation when nothing
// follows it. Empty or whitespace-only input yields nil. On internal
// failure it falls back to paragraph splitting, then to the whole text
// as a single fragment; it never panics out to the caller.
func SplitSentences(text string) (sentences []string) {
	defer func() {
		if r := recover(); r != nil {
			sentences = splitParagraphs(text)
		}
	}()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	for _, part := range sentenceBoundary.Split(trimmed, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}

	return sentences
}

// splitParagraphs is the degraded split used when sentence splitting
// fails: blank-line boundaries, whole text as the last resort.
func splitParagraphs(text string) (paragraphs []string) {
	defer func() {
		if r := recover(); r != nil {
			paragraphs = []string{text}
		}
	}()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	for _, part := range paragraphBoundary.Split(trimmed, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			paragraphs = append(paragraphs, part)
		}
	}

	if len(paragraphs) == 0 {
		return []string{trimmed}
	}
	return paragraphs
}
