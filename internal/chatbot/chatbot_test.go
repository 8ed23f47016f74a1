package chatbot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"ChatPilot/internal/config"
	"ChatPilot/internal/fallback"
	"ChatPilot/internal/session"
)

// stubCompleter is a scripted Completer that records what it was called with.
type stubCompleter struct {
	reply string
	ok    bool

	calls          int
	lastTranscript []session.Message
	lastLatest     string
}

func (s *stubCompleter) Generate(_ context.Context, transcript []session.Message, latest string) (string, bool) {
	s.calls++
	s.lastTranscript = transcript
	s.lastLatest = latest
	return s.reply, s.ok
}

func newTestBot(completer Completer) (*ChatBot, *session.Store) {
	cfg := config.Default()
	store := session.NewStore(cfg.HistoryLimit)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	return New(cfg, store, completer, fallback.English(), logger, tracer, meter), store
}

func TestNewEnsuresInitialSession(t *testing.T) {
	bot, store := newTestBot(&stubCompleter{})

	sessions := store.List()
	require.Len(t, sessions, 1)
	assert.Equal(t, "First chat", sessions[0].Title)

	// Blank-id callers resolve to it instead of failing.
	history, err := bot.History("")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHandleMessageGreetingFallback(t *testing.T) {
	bot, _ := newTestBot(&stubCompleter{ok: false})

	created := bot.CreateSession("")
	assert.Regexp(t, `^Chat • `, created.Title)

	result, err := bot.HandleMessage(context.Background(), created.ID, "hello")
	require.NoError(t, err)

	assert.Equal(t, "Hey! What's up?", result.Reply)
	assert.Equal(t, []string{"Give me an evening idea", "Set a reminder", "Plan a to-do list"}, result.Suggestions)
}

func TestHandleMessageBlankText(t *testing.T) {
	bot, _ := newTestBot(&stubCompleter{ok: false})
	id := bot.CreateSession("blank").ID

	result, err := bot.HandleMessage(context.Background(), id, "   ")
	require.NoError(t, err)
	assert.Equal(t, "Say anything and I'll riff with you.", result.Reply)

	// The trimmed (empty) text is what gets recorded.
	history, err := bot.History(id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "", history[0].Text)
}

func TestHandleMessageFlightKeyword(t *testing.T) {
	bot, _ := newTestBot(&stubCompleter{ok: false})
	id := bot.CreateSession("travel").ID

	result, err := bot.HandleMessage(context.Background(), id, "book a flight")
	require.NoError(t, err)

	assert.Equal(t, "I can scan a few sites, compare routes, and remind you about duty-free snacks.", result.Reply)
	assert.Equal(t, "Find me cheap flights", result.Suggestions[0])
	assert.Equal(t, []string{"Set a reminder", "Plan a to-do list"}, result.Suggestions[1:])
}

func TestHandleMessageUnknownSession(t *testing.T) {
	bot, store := newTestBot(&stubCompleter{reply: "hi", ok: true})

	_, err := bot.HandleMessage(context.Background(), "no-such-id", "hello")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// No mutation anywhere in the store.
	for _, s := range store.List() {
		history, err := bot.History(s.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	}
}

func TestHandleMessageBackendReply(t *testing.T) {
	stub := &stubCompleter{reply: "backend says hi", ok: true}
	bot, _ := newTestBot(stub)
	id := bot.CreateSession("remote").ID

	result, err := bot.HandleMessage(context.Background(), id, "book a flight")
	require.NoError(t, err)

	// Reply comes from the backend verbatim; suggestions still come from the
	// local generator keyed on the user's text.
	assert.Equal(t, "backend says hi", result.Reply)
	assert.Equal(t, "Find me cheap flights", result.Suggestions[0])
	assert.Equal(t, "book a flight", stub.lastLatest)

	history, err := bot.History(id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, session.RoleUser, history[0].Role)
	assert.Equal(t, session.RoleBot, history[1].Role)
	assert.Equal(t, "backend says hi", history[1].Text)
}

func TestHandleMessageTranscriptBounded(t *testing.T) {
	stub := &stubCompleter{reply: "ok", ok: true}
	bot, _ := newTestBot(stub)
	id := bot.CreateSession("long").ID

	for i := 0; i < 8; i++ {
		_, err := bot.HandleMessage(context.Background(), id, "say something")
		require.NoError(t, err)
	}

	// 8 exchanges put 16 messages in history; the transcript sent to the
	// backend holds only the 10 most recent, ending with the user's message.
	require.Len(t, stub.lastTranscript, 10)
	last := stub.lastTranscript[len(stub.lastTranscript)-1]
	assert.Equal(t, session.RoleUser, last.Role)
	assert.Equal(t, "say something", last.Text)
}

func TestHandleMessageCachesIdenticalTranscripts(t *testing.T) {
	stub := &stubCompleter{reply: "cached answer", ok: true}
	bot, _ := newTestBot(stub)

	// Two different sessions with identical transcripts: the second reply is
	// served from cache without another backend call.
	first := bot.CreateSession("one").ID
	second := bot.CreateSession("two").ID

	r1, err := bot.HandleMessage(context.Background(), first, "same question")
	require.NoError(t, err)
	r2, err := bot.HandleMessage(context.Background(), second, "same question")
	require.NoError(t, err)

	assert.Equal(t, r1.Reply, r2.Reply)
	assert.Equal(t, 1, stub.calls)
}

func TestHandleMessageFallbackNotCached(t *testing.T) {
	stub := &stubCompleter{ok: false}
	bot, _ := newTestBot(stub)

	first := bot.CreateSession("one").ID
	second := bot.CreateSession("two").ID

	_, err := bot.HandleMessage(context.Background(), first, "same question")
	require.NoError(t, err)
	_, err = bot.HandleMessage(context.Background(), second, "same question")
	require.NoError(t, err)

	// Fallback replies never populate the cache, so the backend is consulted
	// again each time.
	assert.Equal(t, 2, stub.calls)
}

func TestHandleMessageBlankSessionID(t *testing.T) {
	bot, store := newTestBot(&stubCompleter{ok: false})

	result, err := bot.HandleMessage(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hey! What's up?", result.Reply)

	// The exchange landed in the initial session.
	first := store.List()[0]
	history, err := bot.History(first.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestDefaultSessionID(t *testing.T) {
	bot, store := newTestBot(&stubCompleter{})

	id := bot.DefaultSessionID()
	assert.Equal(t, store.List()[0].ID, id)
}
