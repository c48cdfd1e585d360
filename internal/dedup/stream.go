package dedup

import (
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	"venue_assistant/internal/logger"
	"venue_assistant/internal/metrics"
	"venue_assistant/pkg"
)

// finalResendMinLen is the accumulated-response length past which a
// standalone fragment containing the whole accumulated response is
// treated as a final-response re-send and discarded.
const finalResendMinLen = 100

// StreamDeduplicator filters one streaming turn: it consumes raw
// message chunks from the upstream agent call and emits only novel
// text fragments, plus tool-call records when requested. Accepted
// fragments strictly grow the logical accumulated response, so one
// turn never yields the same fragment twice.
type StreamDeduplicator struct {
	detector     *Detector
	metrics      *metrics.Store
	sessionID    string
	includeTools bool

	accumulated string
	dropped     int
}

// NewStreamDeduplicator creates the per-turn dedup state machine.
// The detector is shared across the session's turns so earlier
// responses stay visible to the content-level check; metrics may be
// nil.
func NewStreamDeduplicator(detector *Detector, m *metrics.Store, sessionID string, includeTools bool) *StreamDeduplicator {
	return &StreamDeduplicator{
		detector:     detector,
		metrics:      m,
		sessionID:    sessionID,
		includeTools: includeTools,
	}
}

// Process handles one upstream message chunk and returns the records
// to yield, in order. Tool calls pass through undeduplicated.
func (s *StreamDeduplicator) Process(msg *schema.Message) []pkg.StreamRecord {
	var out []pkg.StreamRecord
	if msg == nil {
		return out
	}

	if s.includeTools {
		for _, call := range msg.ToolCalls {
			out = append(out, pkg.StreamRecord{
				Type:     pkg.StreamRecordToolCall,
				ToolName: call.Function.Name,
				ToolArgs: call.Function.Arguments,
			})
		}
	}

	text := msg.Content
	if text == "" {
		return out
	}

	if strings.HasPrefix(text, s.accumulated) {
		// Extension of what we already emitted: yield only the suffix.
		delta := text[len(s.accumulated):]
		if delta == "" {
			return out
		}
		if s.accept(delta, pkg.StageTokenYielding) {
			s.accumulated = text
			out = append(out, pkg.StreamRecord{Type: pkg.StreamRecordText, Content: delta})
		}
		return out
	}

	// Standalone fragment: the upstream delivered text that does not
	// extend the accumulated response. A long accumulated response
	// contained inside the fragment means the upstream re-sent the
	// final response wholesale; drop it.
	if utf8.RuneCountInString(s.accumulated) > finalResendMinLen && strings.Contains(text, s.accumulated) {
		logger.Debug().
			Str("session_id", s.sessionID).
			Int("fragment_length", len(text)).
			Msg("discarding final-response re-send")
		return out
	}

	if s.accept(text, pkg.StageEventProcessing) {
		s.accumulated += text
		out = append(out, pkg.StreamRecord{Type: pkg.StreamRecordText, Content: text})
	}
	return out
}

// accept runs a candidate fragment through the detector and registers
// it on acceptance. Duplicates are dropped silently and counted.
func (s *StreamDeduplicator) accept(fragment string, stage pkg.PipelineStage) bool {
	if s.detector.IsDuplicate(fragment, stage) {
		s.drop()
		return false
	}
	if dup, preview := s.detector.ContainsDuplicateContent(fragment, s.sessionID); dup {
		logger.Debug().
			Str("session_id", s.sessionID).
			Str("preview", preview).
			Msg("dropping content-level duplicate fragment")
		s.drop()
		return false
	}

	s.detector.AddChunk(fragment)
	s.detector.RegisterContent(fragment, s.sessionID)
	return true
}

func (s *StreamDeduplicator) drop() {
	s.dropped++
	if s.metrics != nil {
		s.metrics.IncrementDuplicateDetected(s.sessionID)
	}
}

// Accumulated returns the full novel text of the turn so far.
func (s *StreamDeduplicator) Accumulated() string {
	return s.accumulated
}

// DuplicatesDropped returns how many fragments this turn discarded.
func (s *StreamDeduplicator) DuplicatesDropped() int {
	return s.dropped
}
