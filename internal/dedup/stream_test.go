package dedup

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_assistant/internal/metrics"
	"venue_assistant/pkg"
)

func newTurn(t *testing.T) *StreamDeduplicator {
	t.Helper()
	return NewStreamDeduplicator(NewDetector(Options{}), metrics.NewStore(), "test-session", false)
}

func textRecords(records []pkg.StreamRecord) []string {
	var out []string
	for _, r := range records {
		if r.Type == pkg.StreamRecordText {
			out = append(out, r.Content)
		}
	}
	return out
}

func TestStreamSnapshotDeltas(t *testing.T) {
	sd := newTurn(t)

	var yielded []string
	for _, snapshot := range []string{"Hello ", "Hello world", "Hello world! Nice day."} {
		yielded = append(yielded, textRecords(sd.Process(schema.AssistantMessage(snapshot, nil)))...)
	}

	assert.Equal(t, []string{"Hello ", "world", "! Nice day."}, yielded)
	assert.Equal(t, "Hello world! Nice day.", sd.Accumulated())
}

func TestStreamMonotonicGrowth(t *testing.T) {
	sd := newTurn(t)

	snapshots := []string{
		"Let me ",
		"Let me find ",
		"Let me find venues ",
		"Let me find venues in Philly.",
	}

	seen := map[string]bool{}
	prevLen := 0
	for _, snapshot := range snapshots {
		for _, frag := range textRecords(sd.Process(schema.AssistantMessage(snapshot, nil))) {
			assert.False(t, seen[frag], "fragment %q yielded twice", frag)
			seen[frag] = true
			assert.Greater(t, len(sd.Accumulated()), prevLen, "accepted fragment must grow the response")
			prevLen = len(sd.Accumulated())
		}
	}
}

func TestStreamIdempotentResend(t *testing.T) {
	sd := newTurn(t)

	full := "Here are three venues that could work for your party of eight people downtown, each with a private room available."
	got := textRecords(sd.Process(schema.AssistantMessage(full, nil)))
	require.Equal(t, []string{full}, got)

	// Full-snapshot re-send yields nothing
	got = textRecords(sd.Process(schema.AssistantMessage(full, nil)))
	assert.Empty(t, got)
}

func TestStreamStandaloneFragment(t *testing.T) {
	sd := newTurn(t)

	sd.Process(schema.AssistantMessage("Completely separate opening line about the weather today.", nil))
	got := textRecords(sd.Process(schema.AssistantMessage("A standalone fragment with different wording entirely.", nil)))

	assert.Equal(t, []string{"A standalone fragment with different wording entirely."}, got)
	assert.Equal(t,
		"Completely separate opening line about the weather today."+
			"A standalone fragment with different wording entirely.",
		sd.Accumulated())
}

func TestStreamFinalResendDiscarded(t *testing.T) {
	sd := newTurn(t)

	long := strings.Repeat("A detailed venue recommendation sentence. ", 5)
	sd.Process(schema.AssistantMessage(long, nil))
	require.Greater(t, len(sd.Accumulated()), 100)

	// Upstream re-sends the whole response wrapped in extra framing;
	// the fragment no longer extends the accumulated response but
	// fully contains it.
	resend := "FINAL: " + long
	got := textRecords(sd.Process(schema.AssistantMessage(resend, nil)))
	assert.Empty(t, got)
}

func TestStreamExtensionDuplicateCounted(t *testing.T) {
	store := metrics.NewStore()
	sd := NewStreamDeduplicator(NewDetector(Options{}), store, "count-session", false)

	frag := "An interesting fact about the venue across the street."
	sd.Process(schema.AssistantMessage(frag, nil))

	// The snapshot doubles the already-seen fragment: the delta equals
	// an earlier chunk and is dropped by the hash check.
	got := textRecords(sd.Process(schema.AssistantMessage(frag+frag, nil)))
	assert.Empty(t, got)
	assert.Equal(t, 1, sd.DuplicatesDropped())

	m, ok := store.Session("count-session")
	require.True(t, ok)
	assert.Equal(t, 1, m.TotalDuplicatesDetected)
}

func TestStreamStandaloneDuplicateDropped(t *testing.T) {
	store := metrics.NewStore()
	detector := NewDetector(Options{})
	sd := NewStreamDeduplicator(detector, store, "dup-session", false)

	sd.Process(schema.AssistantMessage("Opening line with enough length to matter here.", nil))
	// A standalone fragment that exactly repeats an already-seen chunk
	got := textRecords(sd.Process(schema.AssistantMessage("Second line, also novel and reasonably long.", nil)))
	require.NotEmpty(t, got)

	repeat := textRecords(sd.Process(schema.AssistantMessage("Second line, also novel and reasonably long.", nil)))
	assert.Empty(t, repeat)
	assert.Equal(t, 1, sd.DuplicatesDropped())

	m, ok := store.Session("dup-session")
	require.True(t, ok)
	assert.Equal(t, 1, m.TotalDuplicatesDetected)
}

func TestStreamToolCallPassThrough(t *testing.T) {
	sd := NewStreamDeduplicator(NewDetector(Options{}), nil, "tools-session", true)

	msg := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "venue_search", Arguments: `{"query":"rooftop"}`}},
			{Function: schema.FunctionCall{Name: "venue_search", Arguments: `{"query":"rooftop"}`}},
		},
	}

	records := sd.Process(msg)
	require.Len(t, records, 2, "tool calls are never deduplicated")
	assert.Equal(t, pkg.StreamRecordToolCall, records[0].Type)
	assert.Equal(t, "venue_search", records[0].ToolName)
}

func TestStreamToolCallsSuppressedWhenNotRequested(t *testing.T) {
	sd := NewStreamDeduplicator(NewDetector(Options{}), nil, "tools-session", false)

	msg := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "venue_search", Arguments: `{}`}},
		},
	}
	assert.Empty(t, sd.Process(msg))
}
