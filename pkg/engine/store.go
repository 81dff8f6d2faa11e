package engine

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/james-see/notemaker/pkg/theory"
)

// Store keeps sessions in memory by ID
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	seed     uint64
	tempo    float64
	logger   *slog.Logger
}

// NewStore creates a store. A non-zero seed makes every new session start
// from the same random sequence.
func NewStore(seed uint64, tempo float64, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		seed:     seed,
		tempo:    tempo,
		logger:   logger,
	}
}

// Create starts a new session
func (st *Store) Create() *Session {
	id := uuid.New().String()
	s := NewSession(id, theory.NewRand(st.seed), st.tempo, st.logger)

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	st.logger.Info("session created", "session", id)
	return s
}

// Get looks a session up
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	st.logger.Info("session deleted", "session", id)
	return nil
}

// IDs lists the session IDs, oldest first
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	list := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}
