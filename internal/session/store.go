package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors returned by Store lookups.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSessions      = errors.New("no sessions available")
)

const (
	defaultHistoryLimit = 80
	titleTimeFormat     = "Jan 2 · 15:04"
)

// record is the store-owned state of one session. Callers never receive a
// reference to it; history reads hand out copies.
type record struct {
	id        string
	title     string
	createdAt time.Time
	updatedAt time.Time
	history   []Message
}

func (r *record) summary() Summary {
	return Summary{ID: r.id, Title: r.title, CreatedAt: r.createdAt, UpdatedAt: r.updatedAt}
}

// Store holds all chat sessions in memory. A single mutex covers every read
// and mutation so create/append/list interleavings observe a consistent
// snapshot; critical sections stay O(history limit).
type Store struct {
	mu       sync.Mutex
	limit    int
	sessions map[string]*record
	order    []string // insertion order, oldest first
}

// NewStore creates an empty store that retains at most limit messages per
// session, evicting the oldest first. Non-positive limits fall back to the
// default of 80.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &Store{
		limit:    limit,
		sessions: make(map[string]*record),
	}
}

// Create adds a new session and returns its summary. A blank title defaults
// to a timestamp-derived one. Create never fails.
func (s *Store) Create(title string) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.create(title)
}

// create inserts a session. Callers must hold the lock.
func (s *Store) create(title string) Summary {
	now := time.Now()
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Chat • " + now.Format(titleTimeFormat)
	}

	rec := &record{
		id:        uuid.New().String(),
		title:     title,
		createdAt: now,
		updatedAt: now,
	}
	s.sessions[rec.id] = rec
	s.order = append(s.order, rec.id)

	return rec.summary()
}

// List returns summaries of all sessions, most recently active first. Ties
// keep insertion order.
func (s *Store) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.sessions[id].summary())
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries
}

// History returns a copy of the session's message history. A blank id
// resolves to the store's first session.
func (s *Store) History(id string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	history := make([]Message, len(rec.history))
	copy(history, rec.history)
	return history, nil
}

// Append adds a message to the session's history, evicting the oldest
// entries once the limit is exceeded, and touches the session's updatedAt.
func (s *Store) Append(id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.resolve(id)
	if err != nil {
		return err
	}

	rec.history = append(rec.history, msg)
	if len(rec.history) > s.limit {
		rec.history = rec.history[len(rec.history)-s.limit:]
	}
	rec.updatedAt = time.Now()
	return nil
}

// DefaultID returns the id of the store's first session, atomically creating
// a "Quick chat" session when the store is empty. DefaultID never fails.
func (s *Store) DefaultID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) > 0 {
		return s.order[0]
	}
	return s.create("Quick chat").ID
}

// resolve looks up a session by id, falling back to the first session when
// the id is blank (empty or whitespace only). Callers must hold the lock.
func (s *Store) resolve(id string) (*record, error) {
	if strings.TrimSpace(id) == "" {
		if len(s.order) == 0 {
			return nil, ErrNoSessions
		}
		return s.sessions[s.order[0]], nil
	}

	rec, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return rec, nil
}
