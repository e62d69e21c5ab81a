package service_session_auth

// Deliberately minimal: anonymous identities only. A session token maps to an
// opaque user id in the cache; there is nothing to log in with.

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Token = string

var ErrInternal = errors.New("internal error")

type SessionCache interface {
	Set(key string, value string, ttl time.Duration) error
	Get(key string) (string, error)
}

type Service struct {
	sessionCache SessionCache
	ttl          time.Duration
}

func New(
	sessionCache SessionCache,
	ttl *time.Duration,
) *Service {
	if ttl == nil {
		ttl = func() *time.Duration {
			defaultSessionTTL := time.Hour * 24
			return &defaultSessionTTL
		}()
	}

	return &Service{
		sessionCache: sessionCache,
		ttl:          *ttl,
	}
}

// Issue mints a fresh anonymous identity and a token resolving to it.
func (s *Service) Issue() (Token, uuid.UUID, error) {
	userID := uuid.New()
	t := s.genToken()

	if err := s.sessionCache.Set(t, userID.String(), s.ttl); err != nil {
		return "", uuid.Nil, errors.Join(ErrInternal, err)
	}

	return t, userID, nil
}

// Resolve returns uuid.Nil for unknown or expired tokens.
func (s *Service) Resolve(t Token) (uuid.UUID, error) {
	v, err := s.sessionCache.Get(t)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInternal, err)
	}
	if v == "" {
		return uuid.Nil, nil
	}

	userID, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInternal, err)
	}

	return userID, nil
}

func (s *Service) genToken() Token {
	return uuid.New().String()
}
