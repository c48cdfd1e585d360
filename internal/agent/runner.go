package agent

import (
	"context"
	"io"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"venue_assistant/internal/conversation"
	"venue_assistant/internal/dedup"
	"venue_assistant/internal/logger"
	"venue_assistant/internal/metrics"
	"venue_assistant/pkg"
)

const systemPrompt = "You are a friendly event-planning assistant. Help the user find and book " +
	"venues for their events. When you recommend a venue, format its name in bold and include " +
	"its Place ID on the following line."

// ChatStreamer is the upstream generation source: one streaming model
// call per turn. Satisfied by every eino chat model.
type ChatStreamer interface {
	Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error)
}

// Runner drives one conversational turn end to end: context-prefix
// injection on the outgoing message, the streaming model call,
// duplicate suppression on the way back, and end-of-turn context and
// history updates.
type Runner struct {
	model     ChatStreamer
	history   conversation.Repository
	contexts  conversation.Store
	extractor *conversation.Extractor
	metrics   *metrics.Store
	dedupOpts dedup.Options

	mu        sync.Mutex
	detectors map[string]*dedup.Detector
}

// NewRunner wires the runner. The metrics store may be shared across
// runners; detectors are per session and owned here.
func NewRunner(m ChatStreamer, history conversation.Repository, contexts conversation.Store, metricsStore *metrics.Store, opts dedup.Options) *Runner {
	return &Runner{
		model:     m,
		history:   history,
		contexts:  contexts,
		extractor: conversation.NewExtractor(),
		metrics:   metricsStore,
		dedupOpts: opts,
		detectors: make(map[string]*dedup.Detector),
	}
}

// detector returns the session's detector, creating it on first use.
// Duplicate state persists across the session's turns so repeated
// responses stay suppressible.
func (r *Runner) detector(sessionID string) *dedup.Detector {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.detectors[sessionID]
	if !ok {
		d = dedup.NewDetector(r.dedupOpts)
		r.detectors[sessionID] = d
	}
	return d
}

// Stream runs one streaming turn. The returned reader yields text and
// (when includeTools is set) tool-call records in upstream order;
// unrecoverable failures surface as a single *InvocationError from
// Recv. Output yielded before a mid-stream failure remains valid.
func (r *Runner) Stream(ctx context.Context, message, sessionID, userID string, includeTools bool) (*schema.StreamReader[pkg.StreamRecord], error) {
	outgoing := r.enhanceMessage(ctx, sessionID, message)

	history, err := r.history.Load(ctx, sessionID)
	if err != nil {
		return nil, invocationErr(sessionID, "load_history", err)
	}

	messages := make([]*schema.Message, 0, len(history.Messages)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, history.Messages...)
	messages = append(messages, schema.UserMessage(outgoing))

	// The transcript keeps the user's words, not the enhanced payload.
	if err := r.history.AddMessage(ctx, sessionID, schema.UserMessage(message)); err != nil {
		return nil, invocationErr(sessionID, "store_message", err)
	}

	upstream, err := r.model.Stream(ctx, messages)
	if err != nil {
		return nil, invocationErr(sessionID, "generate", err)
	}

	logger.Debug().
		Str("session_id", sessionID).
		Str("user_id", userID).
		Int("history_messages", len(history.Messages)).
		Msg("streaming turn started")

	sr, sw := schema.Pipe[pkg.StreamRecord](16)
	go r.pump(ctx, upstream, sw, sessionID, includeTools)
	return sr, nil
}

// Query drains a streaming turn and concatenates the text fragments.
func (r *Runner) Query(ctx context.Context, message, sessionID, userID string) (string, error) {
	stream, err := r.Stream(ctx, message, sessionID, userID, false)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var response string
	for {
		record, err := stream.Recv()
		if err == io.EOF {
			return response, nil
		}
		if err != nil {
			return response, err
		}
		if record.Type == pkg.StreamRecordText {
			response += record.Content
		}
	}
}

// pump consumes the upstream message stream through the deduplicator
// and forwards accepted records. Runs in its own goroutine; the writer
// is closed when the turn finishes or fails.
func (r *Runner) pump(ctx context.Context, upstream *schema.StreamReader[*schema.Message], sw *schema.StreamWriter[pkg.StreamRecord], sessionID string, includeTools bool) {
	defer sw.Close()
	defer upstream.Close()

	sd := dedup.NewStreamDeduplicator(r.detector(sessionID), r.metrics, sessionID, includeTools)

	for {
		msg, err := upstream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error().
				Str("session_id", sessionID).
				Err(err).
				Msg("upstream stream failed mid-turn")
			sw.Send(pkg.StreamRecord{}, invocationErr(sessionID, "stream", err))
			r.finishTurn(ctx, sessionID, sd)
			return
		}

		for _, record := range sd.Process(msg) {
			if closed := sw.Send(record, nil); closed {
				// Caller stopped iterating; the partial turn still counts.
				r.finishTurn(ctx, sessionID, sd)
				return
			}
		}
	}

	r.finishTurn(ctx, sessionID, sd)
}

// finishTurn records response quality and, when novel text was
// produced, feeds the full response to the context extractor and the
// transcript. Context and storage failures are logged, never raised.
func (r *Runner) finishTurn(ctx context.Context, sessionID string, sd *dedup.StreamDeduplicator) {
	defer r.metrics.RecordResponseQuality(sessionID, sd.DuplicatesDropped() > 0)

	final := sd.Accumulated()
	if final == "" {
		return
	}

	if c, err := r.contexts.GetOrCreate(ctx, sessionID); err == nil {
		r.extractor.UpdateFromAgentMessage(c, final)
		if err := r.contexts.Save(ctx, sessionID, c); err != nil {
			logger.Warn().Str("session_id", sessionID).Err(err).Msg("failed to save context after turn")
		}
	} else {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("failed to load context after turn")
	}

	if err := r.history.AddMessage(ctx, sessionID, schema.AssistantMessage(final, nil)); err != nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("failed to store assistant response")
	}
}

// enhanceMessage renders the session's context string and prefixes it
// onto the outgoing message, then folds the current message into the
// context. A context failure falls back to the unmodified message so a
// tracking bug never blocks the conversation.
func (r *Runner) enhanceMessage(ctx context.Context, sessionID, message string) string {
	c, err := r.contexts.GetOrCreate(ctx, sessionID)
	if err != nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("context unavailable, sending message unmodified")
		return message
	}

	// Context rendered before this message is applied: the prefix
	// reflects what was known coming into the turn.
	contextString := c.ContextString()

	r.extractor.UpdateFromUserMessage(c, message)
	if err := r.contexts.Save(ctx, sessionID, c); err != nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("failed to save context before turn")
	}

	if contextString == "" {
		return message
	}
	return "[CONTEXT: " + contextString + "]\n\n" + message
}

// GetContext returns the session's tracked context.
func (r *Runner) GetContext(ctx context.Context, sessionID string) (*conversation.Context, error) {
	return r.contexts.Get(ctx, sessionID)
}

// ResolveVenue resolves a natural-language venue reference against the
// session's recent venues.
func (r *Runner) ResolveVenue(ctx context.Context, sessionID, reference string) (*pkg.VenueInfo, error) {
	c, err := r.contexts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return conversation.FindVenueByReference(c, reference), nil
}

// ClearContext drops the session's tracked context and its duplicate
// detection state. A cleared session starts over: responses the user
// saw before the clear stream again in full.
func (r *Runner) ClearContext(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	if d, ok := r.detectors[sessionID]; ok {
		d.ClearSession(sessionID)
		delete(r.detectors, sessionID)
	}
	r.mu.Unlock()

	return r.contexts.Clear(ctx, sessionID)
}

// ClearContextField resets one named context field.
func (r *Runner) ClearContextField(ctx context.Context, sessionID, field string) error {
	c, err := r.contexts.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !c.ClearField(field) {
		return invocationErr(sessionID, "clear_field", errUnknownField(field))
	}
	return r.contexts.Save(ctx, sessionID, c)
}

// RemoveVenue deletes one tracked venue by position.
func (r *Runner) RemoveVenue(ctx context.Context, sessionID string, index int) error {
	c, err := r.contexts.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !c.RemoveVenue(index) {
		return invocationErr(sessionID, "remove_venue", errVenueIndex(index))
	}
	return r.contexts.Save(ctx, sessionID, c)
}

// DuplicationSummary reports the session's duplicate detections.
func (r *Runner) DuplicationSummary(sessionID string) pkg.DuplicationSummary {
	return r.detector(sessionID).Summary()
}
