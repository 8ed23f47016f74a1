package chatbot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ChatPilot/internal/cache"
	"ChatPilot/internal/config"
	"ChatPilot/internal/fallback"
	"ChatPilot/internal/session"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Completer is the outbound completion capability. Generate returns ok=false
// when no reply could be produced (missing credentials, transport failure,
// timeout, empty response); it never returns an error.
type Completer interface {
	Generate(ctx context.Context, transcript []session.Message, latest string) (reply string, ok bool)
}

// Result is what a handled message returns to the caller: the reply and three
// follow-up suggestions.
type Result struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions"`
}

// ChatBot composes the session store, the completion backend, and the local
// responder into the message-handling pipeline.
type ChatBot struct {
	config    config.Config
	store     *session.Store
	completer Completer
	responder *fallback.Responder
	cache     sync.Map
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
}

// New creates a ChatBot. It guarantees at least one session exists so that
// callers that omit a session id always resolve to a valid session.
func New(cfg config.Config, store *session.Store, completer Completer, responder *fallback.Responder,
	logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *ChatBot {
	cb := &ChatBot{
		config:    cfg,
		store:     store,
		completer: completer,
		responder: responder,
		logger:    logger,
		tracer:    tracer,
		meter:     meter,
	}

	if len(store.List()) == 0 {
		initial := store.Create("First chat")
		logger.Info("created initial session", "session_id", initial.ID)
	}

	return cb
}

// CreateSession adds a new session. A blank title gets a timestamp-derived one.
func (cb *ChatBot) CreateSession(title string) session.Summary {
	summary := cb.store.Create(title)
	cb.logger.Info("created session", "session_id", summary.ID, "title", summary.Title)
	return summary
}

// ListSessions returns all sessions, most recently active first.
func (cb *ChatBot) ListSessions() []session.Summary {
	return cb.store.List()
}

// History returns a copy of the session's message history.
func (cb *ChatBot) History(sessionID string) ([]session.Message, error) {
	return cb.store.History(sessionID)
}

// DefaultSessionID returns the id legacy no-session-id callers resolve to.
func (cb *ChatBot) DefaultSessionID() string {
	return cb.store.DefaultID()
}

// HandleMessage records the user's message, obtains a reply from the backend
// or the local responder, records the reply, and returns it together with
// follow-up suggestions. Suggestions are always computed from the user's text,
// whichever path produced the reply.
func (cb *ChatBot) HandleMessage(ctx context.Context, sessionID, text string) (Result, error) {
	ctx, span := cb.tracer.Start(ctx, "handle_message")
	defer span.End()

	trimmed := strings.TrimSpace(text)

	userMsg := session.Message{Role: session.RoleUser, Text: trimmed, Timestamp: time.Now()}
	if err := cb.store.Append(sessionID, userMsg); err != nil {
		return Result{}, err
	}

	history, err := cb.store.History(sessionID)
	if err != nil {
		return Result{}, err
	}

	transcript := history
	if len(transcript) > cb.config.TranscriptLimit {
		transcript = transcript[len(transcript)-cb.config.TranscriptLimit:]
	}

	reply, fromBackend := cb.generateReply(ctx, transcript, trimmed)

	botMsg := session.Message{Role: session.RoleBot, Text: reply, Timestamp: time.Now()}
	if err := cb.store.Append(sessionID, botMsg); err != nil {
		return Result{}, err
	}

	cb.countReply(ctx, fromBackend)

	return Result{Reply: reply, Suggestions: cb.responder.Suggestions(trimmed)}, nil
}

// generateReply resolves the reply for a transcript: cached backend reply,
// fresh backend reply, or local fallback. The store lock is never held here;
// the backend call only blocks this caller.
func (cb *ChatBot) generateReply(ctx context.Context, transcript []session.Message, latest string) (string, bool) {
	key := cache.Key(transcript)
	if val, ok := cb.cache.Load(key); ok {
		cached := val.(cache.CachedResponse)
		cb.logger.Info("cache hit", "key", key[:16])
		return cached.Response, true
	}

	start := time.Now()
	reply, ok := cb.completer.Generate(ctx, transcript, latest)
	cb.recordBackendDuration(ctx, time.Since(start))

	if !ok {
		return cb.responder.Reply(latest), false
	}

	cb.cache.Store(key, cache.CachedResponse{Response: reply, Timestamp: time.Now()})
	cb.logger.Info("cached backend reply", "key", key[:16])
	return reply, true
}

// countReply bumps the per-source reply counter.
func (cb *ChatBot) countReply(ctx context.Context, fromBackend bool) {
	name := "chat.replies.fallback"
	if fromBackend {
		name = "chat.replies.backend"
	}
	counter, err := cb.meter.Int64Counter(
		name,
		metric.WithDescription("replies served, by source"),
	)
	if err != nil {
		cb.logger.Warn("failed to create counter", "name", name, "error", err)
		return
	}
	counter.Add(ctx, 1)
}

// recordBackendDuration records the backend round-trip time.
func (cb *ChatBot) recordBackendDuration(ctx context.Context, d time.Duration) {
	histogram, err := cb.meter.Float64Histogram(
		"chat.backend.request.duration",
		metric.WithDescription("completion backend request duration in milliseconds"),
	)
	if err != nil {
		cb.logger.Warn("failed to create histogram", "error", err)
		return
	}
	histogram.Record(ctx, float64(d.Milliseconds()))
}
