package server

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdash/internal/dashboard"
	"salesdash/internal/logger"
)

const (
	sessionCookie = "salesdash_session"
	sessionKey    = "session"
)

// session is one browser's dashboard
type session struct {
	id       string
	dash     *dashboard.Dashboard
	lastSeen time.Time
	load     sync.Once
}

// ensureLoaded runs the first dashboard load of a session. The load
// outlives a cancelled request so the session is never left half loaded.
func (s *session) ensureLoaded(ctx context.Context) {
	s.load.Do(func() {
		if err := s.dash.LoadDashboard(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("initial dashboard load had failures", logger.Fields{"session": s.id, "error": err.Error()})
		}
	})
}

// Sessions maps session ids to dashboards. Idle sessions expire after ttl
// and at most limit live at once; the least recently seen one makes room.
type Sessions struct {
	mu     sync.Mutex
	byID   map[string]*session
	ttl    time.Duration
	limit  int
	now    func() time.Time
	create func() (*dashboard.Dashboard, error)
}

func NewSessions(ttl time.Duration, limit int, now func() time.Time, create func() (*dashboard.Dashboard, error)) *Sessions {
	return &Sessions{
		byID:   make(map[string]*session),
		ttl:    ttl,
		limit:  limit,
		now:    now,
		create: create,
	}
}

// Lookup returns the session for id, creating a new one when id is
// unknown or expired. created reports whether a cookie must be set.
func (s *Sessions) Lookup(id string) (sess *session, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.byID[id]; ok && now.Sub(sess.lastSeen) < s.ttl {
		sess.lastSeen = now
		return sess, false, nil
	}

	s.pruneLocked(now)
	for s.limit > 0 && len(s.byID) >= s.limit {
		s.evictOldestLocked()
	}
	d, err := s.create()
	if err != nil {
		return nil, false, err
	}
	sess = &session{id: uuid.NewString(), dash: d, lastSeen: now}
	s.byID[sess.id] = sess
	return sess, true, nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Sessions) pruneLocked(now time.Time) {
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.byID, id)
		}
	}
}

func (s *Sessions) evictOldestLocked() {
	var oldest *session
	for _, sess := range s.byID {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		logger.Debug("session limit reached, dropping oldest session", logger.Fields{"session": oldest.id})
		delete(s.byID, oldest.id)
	}
}

// withSession attaches the caller's session, issuing a cookie for new ones
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		sess, created, err := s.sessions.Lookup(id)
		if err != nil {
			s.log.Error("failed to create dashboard session", err)
			abortWithError(c, err)
			return
		}
		if created {
			c.SetCookie(sessionCookie, sess.id, int(s.sessionTTL.Seconds()), "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}
