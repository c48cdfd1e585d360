package pkg

import (
	"time"
)

// Shared types for the duplicate-suppression pipeline and context tracking

// StreamRecordType identifies the kind of record yielded by a streaming turn
type StreamRecordType string

const (
	StreamRecordText     StreamRecordType = "text"
	StreamRecordToolCall StreamRecordType = "tool_call"
)

// StreamRecord is one unit of output from a streaming agent turn.
// Text records carry the novel fragment; tool_call records carry the
// tool name and raw argument payload.
type StreamRecord struct {
	Type     StreamRecordType `json:"type"`
	Content  string           `json:"content,omitempty"`
	ToolName string           `json:"tool_name,omitempty"`
	ToolArgs string           `json:"tool_args,omitempty"`
}

// DetectionMethod identifies which strategy flagged a duplicate
type DetectionMethod string

const (
	MethodHash       DetectionMethod = "hash"
	MethodPattern    DetectionMethod = "pattern"
	MethodSimilarity DetectionMethod = "similarity"
)

// PipelineStage labels where in the generation -> delivery pipeline a
// chunk was observed
type PipelineStage string

const (
	StageGeneration      PipelineStage = "generation"
	StageEventProcessing PipelineStage = "event_processing"
	StageTokenYielding   PipelineStage = "token_yielding"
	StageSessionStorage  PipelineStage = "session_storage"
)

// DuplicationSource is the inferred origin of a duplicate
type DuplicationSource string

const (
	SourceAgent     DuplicationSource = "agent"
	SourceRunner    DuplicationSource = "runner"
	SourceStreaming DuplicationSource = "streaming"
	SourceUnknown   DuplicationSource = "unknown"
)

// DuplicationEvent records one detected duplicate. Immutable once created.
type DuplicationEvent struct {
	Timestamp    time.Time         `json:"timestamp"`
	ChunkPreview string            `json:"chunk_preview"` // truncated to 100 chars
	ChunkLength  int               `json:"chunk_length"`
	Method       DetectionMethod   `json:"method"`
	Stage        PipelineStage     `json:"stage"`
	Source       DuplicationSource `json:"source"`
	Sequence     int               `json:"sequence"`
}

// VenueInfo is one venue mentioned by the agent, tracked for reference
// resolution in later turns. Immutable once created.
type VenueInfo struct {
	Name        string    `json:"name"`
	PlaceID     string    `json:"place_id"`
	Location    string    `json:"location,omitempty"`
	MentionedAt time.Time `json:"mentioned_at"`
}

// DuplicationSummary aggregates the detector's event log. Each breakdown
// sums to Total.
type DuplicationSummary struct {
	Total    int                       `json:"total"`
	BySource map[DuplicationSource]int `json:"by_source"`
	ByStage  map[PipelineStage]int     `json:"by_stage"`
	ByMethod map[DetectionMethod]int   `json:"by_method"`
}
