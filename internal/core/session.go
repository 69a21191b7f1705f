package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/deskhaven/authcore/pkg/crypto"
	"github.com/deskhaven/authcore/pkg/metrics"
)

const (
	// DefaultSessionTimeout is the idle window after which a token expires.
	DefaultSessionTimeout = 30 * time.Minute
	// DefaultTokenLength is the byte length of generated token ids.
	DefaultTokenLength = 32
)

// sessionManager owns the access-token state machine: issuance, sliding idle
// expiry, lookup, and revocation. Expired tokens are retained for history;
// only ACTIVE tokens appear in the live indexes.
type sessionManager struct {
	mu       sync.Mutex
	timeout  time.Duration
	tokenLen int
	now      func() time.Time

	tokens        map[string]*AccessToken // full history, by token id
	activeByToken map[string]*AccessToken
	activeByLogin map[string]string // login id -> token id
}

func newSessionManager(timeout time.Duration, tokenLen int, now func() time.Time) *sessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if tokenLen <= 0 {
		tokenLen = DefaultTokenLength
	}
	if now == nil {
		now = time.Now
	}

	return &sessionManager{
		timeout:       timeout,
		tokenLen:      tokenLen,
		now:           now,
		tokens:        make(map[string]*AccessToken),
		activeByToken: make(map[string]*AccessToken),
		activeByLogin: make(map[string]string),
	}
}

// issue mints a new ACTIVE token bound to the user for the given login id.
// It fails when an ACTIVE token already exists for that login id.
func (s *sessionManager) issue(loginID, userID string) (*AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tokenID, ok := s.activeByLogin[loginID]; ok {
		// The stale-session case still counts as logged in until the token
		// is presented and lazily expired, so expire it here first.
		if token := s.activeByToken[tokenID]; token != nil && !s.idleExpiredLocked(token) {
			return nil, errActiveSession
		}
	}

	id, err := crypto.GenerateToken(s.tokenLen)
	if err != nil {
		return nil, fmt.Errorf("session: mint token: %w", err)
	}

	token := &AccessToken{
		ID:             id,
		UserID:         userID,
		State:          TokenActive,
		LastAccessTime: s.now(),
	}

	s.tokens[id] = token
	s.activeByToken[id] = token
	s.activeByLogin[loginID] = id
	metrics.ActiveSessions.Inc()

	return token, nil
}

// resolve validates liveness of the presented token and returns the bound
// user id. Idle tokens past the timeout are transitioned to EXPIRED on the
// spot (lazy expiry) and reported as invalid. The idle clock is NOT refreshed
// here; the facade refreshes only after a successful authorization.
func (s *sessionManager) resolve(tokenID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.activeByToken[tokenID]
	if !ok {
		return "", errTokenInvalid
	}

	if s.idleExpiredLocked(token) {
		return "", errTokenInvalid
	}

	return token.UserID, nil
}

// touch refreshes the sliding-expiry clock of an active token.
func (s *sessionManager) touch(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.activeByToken[tokenID]; ok {
		token.LastAccessTime = s.now()
	}
}

// revoke explicitly ends the session. Revoking an unknown token fails; so
// does revoking a token that already sat idle past the timeout, which is
// expired rather than logged out.
func (s *sessionManager) revoke(tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.activeByToken[tokenID]
	if !ok {
		return errTokenInvalid
	}

	if s.idleExpiredLocked(token) {
		return errTokenInvalid
	}

	s.expireLocked(token)
	return nil
}

// revokeUser expires every ACTIVE token bound to the user.
func (s *sessionManager) revokeUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range s.activeByToken {
		if token.UserID == userID {
			s.expireLocked(token)
		}
	}
}

// sweep expires every ACTIVE token whose idle time exceeds the timeout and
// returns how many were transitioned. Lazy check-time expiry remains the
// authoritative mechanism; the sweep only bounds live-index growth.
func (s *sessionManager) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for _, token := range s.activeByToken {
		if s.idleExpiredLocked(token) {
			swept++
		}
	}
	return swept
}

// history returns snapshots of the given token ids, newest last.
func (s *sessionManager) history(tokenIDs []string) []TokenView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]TokenView, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		if token, ok := s.tokens[id]; ok {
			views = append(views, token.view())
		}
	}
	return views
}

// idleExpiredLocked expires the token if it sat idle past the timeout and
// reports whether it did. Callers must hold s.mu.
func (s *sessionManager) idleExpiredLocked(token *AccessToken) bool {
	if token.State != TokenActive {
		return true
	}
	if s.now().Sub(token.LastAccessTime) <= s.timeout {
		return false
	}

	s.expireLocked(token)
	return true
}

// expireLocked performs the ACTIVE -> EXPIRED transition and removes the token
// from the live indexes. The token itself is retained in history.
func (s *sessionManager) expireLocked(token *AccessToken) {
	token.State = TokenExpired
	delete(s.activeByToken, token.ID)
	for loginID, tokenID := range s.activeByLogin {
		if tokenID == token.ID {
			delete(s.activeByLogin, loginID)
			break
		}
	}
	metrics.ActiveSessions.Dec()
}
