package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"edumaster-order-bot/internal/config"
	"edumaster-order-bot/internal/domain"
	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/repository"
	"edumaster-order-bot/internal/infra/metrics"
)

// Ensure the store implements the port interface.
var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore holds every active conversation session in memory. Nothing
// survives a process restart.
//
// Expired entries are evicted on pressure: a sweep runs before Get/Create/
// Update once the store grows past its capacity, not on a timer. The mutex
// gives the per-key atomicity the concurrent update workers need.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session

	capacity    int
	idleTimeout time.Duration
	maxFiles    int

	now func() time.Time
	log *zerolog.Logger
}

func NewSessionStore(cfg config.SessionConfig, logger *zerolog.Logger) *SessionStore {
	return &SessionStore{
		sessions:    make(map[int64]*model.Session),
		capacity:    cfg.Capacity,
		idleTimeout: cfg.IdleTimeout,
		maxFiles:    cfg.MaxFiles,
		now:         time.Now,
		log:         logger,
	}
}

func (s *SessionStore) Get(_ context.Context, userID int64) (*model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepIfPressured()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	sess.LastActivityAt = s.now()
	return sess.Clone(), true
}

func (s *SessionStore) Create(_ context.Context, userID int64, step model.Step) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepIfPressured()

	// Last writer wins: any prior session for this user is discarded.
	sess := model.NewSession(userID, step, s.now())
	s.sessions[userID] = sess
	metrics.SetActiveSessions(len(s.sessions))
	return sess.Clone()
}

func (s *SessionStore) Update(_ context.Context, userID int64, step model.Step, patch *model.OrderPatch) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepIfPressured()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = model.NewSession(userID, model.StepMenu, s.now())
		s.sessions[userID] = sess
		metrics.SetActiveSessions(len(s.sessions))
	}
	if step != "" {
		sess.Step = step
	}
	sess.Data.Apply(patch)
	sess.LastActivityAt = s.now()
	return sess.Clone()
}

func (s *SessionStore) AddFile(_ context.Context, userID int64, att model.Attachment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if len(sess.Files) >= s.maxFiles {
		return len(sess.Files), domain.ErrTooManyFiles
	}
	sess.Files = append(sess.Files, att)
	sess.LastActivityAt = s.now()
	return len(sess.Files), nil
}

func (s *SessionStore) Clear(_ context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	metrics.SetActiveSessions(len(s.sessions))
}

func (s *SessionStore) SweepExpired(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Len reports the current number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepIfPressured() {
	if len(s.sessions) > s.capacity {
		s.sweepLocked()
	}
}

func (s *SessionStore) sweepLocked() int {
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.IdleSince(now) > s.idleTimeout {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.AddEvictedSessions(removed)
		metrics.SetActiveSessions(len(s.sessions))
		s.log.Debug().Int("evicted", removed).Int("remaining", len(s.sessions)).Msg("session sweep")
	}
	return removed
}
