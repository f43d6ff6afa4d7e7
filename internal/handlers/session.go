package handlers

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

var ErrTooManySessions = errors.New("too many agent sessions")

/*
Session is one live agent. The agent is not safe for concurrent use, so
every access goes through the session's mutex.
*/
type Session struct {
	Id        uuid.UUID
	Seed      uint64
	CreatedAt time.Time

	mu    sync.Mutex
	agent *agent.Agent
}

func (s *Session) Observe(c knowledge.Cell, count int) (knowledge.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.AddObservation(c, count)
}

func (s *Session) NextMove() (agent.Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.NextMove()
}

func (s *Session) Snapshot() *KnowledgeDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewKnowledgeDTO(s.Id, s.agent.Knowledge())
}

/*
Sessions keeps live agents in memory. Once limit sessions exist, creating
another one evicts the oldest.
*/
type Sessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	order    deque.Deque[uuid.UUID]
	limit    int
}

func NewSessions(limit int) *Sessions {
	return &Sessions{
		sessions: make(map[uuid.UUID]*Session),
		limit:    limit,
	}
}

func (s *Sessions) Create(width, height int, seed uint64) (*Session, error) {
	if s.limit <= 0 {
		return nil, ErrTooManySessions
	}
	session := &Session{
		Id:        uuid.New(),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
		agent:     agent.New(width, height, rand.New(rand.NewPCG(seed, 0))),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.sessions) >= s.limit && s.order.Len() > 0 {
		delete(s.sessions, s.order.PopFront())
	}
	s.sessions[session.Id] = session
	s.order.PushBack(session.Id)
	return session, nil
}

func (s *Sessions) Get(id uuid.UUID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
