package dedup

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"venue_assistant/internal/logger"
	"venue_assistant/internal/textmatch"
	"venue_assistant/pkg"
)

const (
	// recentChunkCap bounds the raw-chunk window used by the pattern check
	recentChunkCap = 20
	// sentenceHistoryCap bounds both the fuzzy-match sentence window and
	// the per-session content history
	sentenceHistoryCap = 50
	// minContentSentenceLen is the shortest sentence worth checking at
	// content level; shorter fragments produce too many false positives
	minContentSentenceLen = 10
	// previewLen is the stored chunk preview length
	previewLen = 100
)

// Options tunes a Detector. Zero values fall back to defaults.
type Options struct {
	WindowSize          int     // raw chunks inspected by the pattern check (default 5)
	SentenceWindow      int     // sentences inspected by the fuzzy check (default 10)
	SimilarityThreshold float64 // chunk-level fuzzy threshold (default 0.95)
	ContentThreshold    float64 // sentence-level fuzzy threshold (default 0.85)
}

func (o Options) withDefaults() Options {
	if o.WindowSize <= 0 {
		o.WindowSize = 5
	}
	if o.SentenceWindow <= 0 {
		o.SentenceWindow = 10
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = 0.95
	}
	if o.ContentThreshold <= 0 {
		o.ContentThreshold = 0.85
	}
	return o
}

// Detector classifies streamed chunks as new or duplicate using three
// strategies in order: exact hash match, repeated-pattern match within
// a short window, and fuzzy similarity against recent sentences. Every
// positive detection is recorded as a DuplicationEvent with its
// provenance. Not safe for concurrent use; callers hold one Detector
// per session.
type Detector struct {
	opts Options

	seenHashes      map[uint64]struct{}
	recentChunks    []string
	recentSentences []string

	// sentence history for the content-level check, keyed by session
	contentHistory map[string][]string

	events   []pkg.DuplicationEvent
	sequence int
}

// NewDetector creates a detector with the given options.
func NewDetector(opts Options) *Detector {
	return &Detector{
		opts:           opts.withDefaults(),
		seenHashes:     make(map[uint64]struct{}),
		contentHistory: make(map[string][]string),
	}
}

// stageSource maps the pipeline stage a duplicate was observed at to
// its inferred origin.
func stageSource(stage pkg.PipelineStage) pkg.DuplicationSource {
	switch stage {
	case pkg.StageGeneration:
		return pkg.SourceAgent
	case pkg.StageEventProcessing:
		return pkg.SourceRunner
	case pkg.StageTokenYielding, pkg.StageSessionStorage:
		return pkg.SourceStreaming
	default:
		return pkg.SourceUnknown
	}
}

// IsDuplicate reports whether chunk repeats earlier content. Internal
// failures degrade to false: a detection bug must never drop content
// or crash the response stream.
func (d *Detector) IsDuplicate(chunk string, stage pkg.PipelineStage) (dup bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("duplicate detection failed, treating chunk as new")
			dup = false
		}
	}()

	if chunk == "" {
		return false
	}

	if _, seen := d.seenHashes[xxhash.Sum64String(chunk)]; seen {
		d.recordEvent(chunk, pkg.MethodHash, stage)
		return true
	}

	// Repeated pattern inside the recent window catches cyclic
	// repetition (A,B,C,A,B,C) before the hash set would on a full
	// second cycle.
	window := tail(d.recentChunks, d.opts.WindowSize)
	occurrences := 0
	for _, prev := range window {
		if prev == chunk {
			occurrences++
		}
	}
	if occurrences > 1 {
		d.recordEvent(chunk, pkg.MethodPattern, stage)
		return true
	}

	for _, sentence := range tail(d.recentSentences, d.opts.SentenceWindow) {
		if textmatch.Ratio(chunk, sentence) >= d.opts.SimilarityThreshold {
			d.recordEvent(chunk, pkg.MethodSimilarity, stage)
			return true
		}
	}

	return false
}

// AddChunk registers an accepted chunk with the tracking windows.
// Never raises; a registration failure is logged and skipped.
func (d *Detector) AddChunk(chunk string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("failed to register chunk, continuing")
		}
	}()

	if chunk == "" {
		return
	}

	d.seenHashes[xxhash.Sum64String(chunk)] = struct{}{}
	d.recentChunks = appendBounded(d.recentChunks, chunk, recentChunkCap)
	for _, sentence := range textmatch.SplitSentences(chunk) {
		d.recentSentences = appendBounded(d.recentSentences, sentence, sentenceHistoryCap)
	}
}

// ContainsDuplicateContent checks text at sentence granularity against
// the session's accumulated sentence history: exact membership first,
// then similarity at the content threshold. Returns the offending
// sentence preview on a match. Sentences of minContentSentenceLen or
// fewer characters never match.
func (d *Detector) ContainsDuplicateContent(text, sessionID string) (dup bool, preview string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("content duplicate check failed, treating text as new")
			dup, preview = false, ""
		}
	}()

	if strings.TrimSpace(text) == "" {
		return false, ""
	}

	history := d.contentHistory[sessionID]
	if len(history) == 0 {
		return false, ""
	}

	for _, sentence := range textmatch.SplitSentences(text) {
		if utf8.RuneCountInString(sentence) <= minContentSentenceLen {
			continue
		}
		for _, prev := range history {
			if sentence == prev {
				return true, truncate(sentence, previewLen)
			}
		}
		for _, prev := range history {
			if textmatch.Ratio(sentence, prev) >= d.opts.ContentThreshold {
				return true, truncate(sentence, previewLen)
			}
		}
	}

	return false, ""
}

// RegisterContent adds the text's sentences to the session's content
// history, evicting the oldest past the cap.
func (d *Detector) RegisterContent(text, sessionID string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("failed to register content, continuing")
		}
	}()

	for _, sentence := range textmatch.SplitSentences(text) {
		d.contentHistory[sessionID] = appendBounded(d.contentHistory[sessionID], sentence, sentenceHistoryCap)
	}
}

// ClearSession drops the content history accumulated for a session.
func (d *Detector) ClearSession(sessionID string) {
	delete(d.contentHistory, sessionID)
}

func (d *Detector) recordEvent(chunk string, method pkg.DetectionMethod, stage pkg.PipelineStage) {
	event := pkg.DuplicationEvent{
		Timestamp:    time.Now(),
		ChunkPreview: truncate(chunk, previewLen),
		ChunkLength:  len(chunk),
		Method:       method,
		Stage:        stage,
		Source:       stageSource(stage),
		Sequence:     d.sequence,
	}
	d.sequence++
	d.events = append(d.events, event)

	logger.Debug().
		Str("method", string(method)).
		Str("stage", string(stage)).
		Str("preview", event.ChunkPreview).
		Msg("duplicate chunk detected")
}

// Events returns the append-only duplication event log.
func (d *Detector) Events() []pkg.DuplicationEvent {
	return d.events
}

// Summary aggregates the event log. Each breakdown sums to Total.
func (d *Detector) Summary() pkg.DuplicationSummary {
	summary := pkg.DuplicationSummary{
		Total:    len(d.events),
		BySource: make(map[pkg.DuplicationSource]int),
		ByStage:  make(map[pkg.PipelineStage]int),
		ByMethod: make(map[pkg.DetectionMethod]int),
	}
	for _, e := range d.events {
		summary.BySource[e.Source]++
		summary.ByStage[e.Stage]++
		summary.ByMethod[e.Method]++
	}
	return summary
}

func tail(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func appendBounded(items []string, item string, limit int) []string {
	items = append(items, item)
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
