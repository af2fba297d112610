package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wonny/stockpulse/internal/infra/identity"
)

// Errors
var (
	ErrUnavailable  = errors.New("sign-in unavailable")
	ErrNoSession    = errors.New("session not found")
	ErrInvalidState = errors.New("invalid oauth state")
)

// Provider is an OAuth identity provider
type Provider interface {
	Available() bool
	AuthCodeURL(state, redirectURL string) string
	Exchange(ctx context.Context, code, redirectURL string) (*identity.User, error)
}

// Service exposes the session operations used by the web layer
type Service struct {
	store    *Store
	provider Provider
}

// NewService creates a new session service
func NewService(store *Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// Store returns the underlying session store
func (s *Service) Store() *Store {
	return s.store
}

// EnsureID returns a live session ID, creating a session when id is unknown or expired
func (s *Service) EnsureID(id string) (string, bool) {
	sess, created := s.store.Ensure(id)
	return sess.ID, created
}

// Available reports whether sign-in is offered
func (s *Service) Available() bool {
	return s.provider != nil && s.provider.Available()
}

// CurrentUser returns the user signed in on the session
func (s *Service) CurrentUser(sessionID string) (*identity.User, bool) {
	sess, ok := s.store.Get(sessionID)
	if !ok || sess.User == nil {
		return nil, false
	}
	return sess.User, true
}

// BeginSignIn records a fresh OAuth state on the session and returns the consent URL
func (s *Service) BeginSignIn(sessionID, redirectURL string) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}

	state := uuid.NewString()
	if !s.store.Update(sessionID, func(sess *Session) { sess.State = state }) {
		return "", ErrNoSession
	}

	return s.provider.AuthCodeURL(state, redirectURL), nil
}

// CompleteSignIn validates state, exchanges code and attaches the user
func (s *Service) CompleteSignIn(ctx context.Context, sessionID, state, code, redirectURL string) (*identity.User, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}

	var expected string
	if !s.store.Update(sessionID, func(sess *Session) {
		expected = sess.State
		sess.State = ""
	}) {
		return nil, ErrNoSession
	}

	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		return nil, ErrInvalidState
	}

	user, err := s.provider.Exchange(ctx, code, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("complete sign-in: %w", err)
	}

	s.store.Update(sessionID, func(sess *Session) { sess.User = user })

	log.Info().Str("user", user.DisplayName()).Msg("User signed in")
	return user, nil
}

// SignOut clears the user from the session
func (s *Service) SignOut(sessionID string) {
	s.store.Update(sessionID, func(sess *Session) {
		if sess.User != nil {
			log.Info().Str("user", sess.User.DisplayName()).Msg("User signed out")
		}
		sess.User = nil
		sess.State = ""
	})
}
