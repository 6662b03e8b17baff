package web

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/spacesedan/tonecheck/internal/submission"
)

const SESSION_COOKIE = "tonecheck_session"

// sessionStore maps session tokens to the controller owning that session's
// state. Entries expire after ttl without a request.
type sessionStore struct {
	cache         *cache.Cache
	newController func(id string) *submission.Controller
}

func newSessionStore(ttl time.Duration, newController func(id string) *submission.Controller) *sessionStore {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(token string, _ interface{}) {
		slog.Debug("[Sessions] Session expired")
	})
	return &sessionStore{
		cache:         c,
		newController: newController,
	}
}

// get returns the controller for token and extends its lifetime. token is
// stored as a map key, so it must not alias request memory.
func (s *sessionStore) get(token string) (*submission.Controller, bool) {
	if token == "" {
		return nil, false
	}
	x, found := s.cache.Get(token)
	if !found {
		return nil, false
	}
	ctl := x.(*submission.Controller)
	s.cache.Set(token, ctl, cache.DefaultExpiration)
	return ctl, true
}

// create starts a new session. The controller ID is independent of the
// token so it can be shared with observers.
func (s *sessionStore) create() (string, *submission.Controller) {
	token := uuid.NewString()
	ctl := s.newController(uuid.NewString())
	s.cache.Set(token, ctl, cache.DefaultExpiration)
	slog.Debug("[Sessions] Session created", slog.String("session", ctl.ID()))
	return token, ctl
}

func (s *sessionStore) count() int {
	return s.cache.ItemCount()
}
