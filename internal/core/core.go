package core

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/deskhaven/authcore/pkg/errors"
	"github.com/deskhaven/authcore/pkg/logger"
	"github.com/deskhaven/authcore/pkg/metrics"
)

// Config describes tunable behaviour for the authorization core.
type Config struct {
	// SessionTimeout is the sliding idle window for access tokens.
	SessionTimeout time.Duration
	// TokenLength is the byte length of generated token ids.
	TokenLength int
	// Clock overrides the time source, primarily for testing.
	Clock func() time.Time
}

// Core is the authorization engine behind every restricted operation: it
// authenticates principals, maintains the entitlement catalog and the derived
// grant index, and answers access checks against live sessions.
//
// The catalog, registry, and grant index form one unit of mutual exclusion
// under mu: a check observes either the pre- or post-state of an entitlement
// edit, never a partially applied closure walk. The session manager carries
// its own short-lived lock.
type Core struct {
	mu       sync.RWMutex
	catalog  *catalog
	registry *registry
	index    *grantIndex
	sessions *sessionManager
	log      *zap.Logger
}

// New constructs an empty authorization core. Call Seed to install the
// bootstrap administrator before serving traffic.
func New(cfg Config) *Core {
	return &Core{
		catalog:  newCatalog(),
		registry: newRegistry(),
		index:    newGrantIndex(),
		sessions: newSessionManager(cfg.SessionTimeout, cfg.TokenLength, cfg.Clock),
		log:      logger.WithModule("core"),
	}
}

// Login authenticates the login id and password and issues a fresh access
// token. At most one ACTIVE token may exist per login id.
func (c *Core) Login(loginID, password string) (TokenView, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" {
		return TokenView{}, apperrors.ErrInvalidUserID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.registry.resolveLogin(loginID)
	if !ok {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return TokenView{}, apperrors.ErrInvalidUserID
	}

	if !user.verifyCredential(loginID, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return TokenView{}, apperrors.ErrInvalidPassword
	}

	token, err := c.sessions.issue(loginID, user.ID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, errActiveSession) {
			return TokenView{}, apperrors.ErrAlreadyLoggedIn
		}
		return TokenView{}, apperrors.ErrInternalServer.WithInternal(err)
	}

	user.Tokens = append(user.Tokens, token.ID)
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	c.log.Debug("login", zap.String("login_id", loginID), zap.String("user_id", user.ID))

	return token.view(), nil
}

// Logout explicitly ends the session. Logging out a token that already sat
// idle past the timeout is itself an error: the token expires instead.
func (c *Core) Logout(token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.ErrInvalidAccessToken
	}

	if err := c.sessions.revoke(token); err != nil {
		return apperrors.ErrInvalidAccessToken
	}
	return nil
}

// CheckAccess reports whether the principal bound to the token currently
// holds the permission. A successful check refreshes the token's sliding
// idle clock; a failed one does not.
func (c *Core) CheckAccess(permissionID, token string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, permissionID); err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidAccessToken) {
			metrics.PermissionChecks.WithLabelValues(permissionID, "invalid_token").Inc()
		} else {
			metrics.PermissionChecks.WithLabelValues(permissionID, "denied").Inc()
		}
		return err
	}

	metrics.PermissionChecks.WithLabelValues(permissionID, "allowed").Inc()
	return nil
}

// Me describes the principal bound to a live token, including its effective
// state and token history. Like a successful check, it refreshes the idle
// clock.
func (c *Core) Me(token string) (UserView, error) {
	if strings.TrimSpace(token) == "" {
		return UserView{}, apperrors.ErrInvalidAccessToken
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	userID, err := c.sessions.resolve(token)
	if err != nil {
		return UserView{}, apperrors.ErrInvalidAccessToken
	}
	c.sessions.touch(token)

	user, ok := c.registry.users[userID]
	if !ok {
		return UserView{}, apperrors.ErrInvalidAccessToken
	}

	view := user.view()
	view.Tokens = c.sessions.history(user.Tokens)
	return view, nil
}

// SweepExpiredTokens expires idle tokens eagerly and returns how many were
// transitioned. Lazy check-time expiry remains authoritative; the sweep only
// bounds the live session indexes.
func (c *Core) SweepExpiredTokens() int {
	return c.sessions.sweep()
}

// authorize resolves the token, verifies liveness, and consults the grant
// index. Only a fully successful authorization refreshes the sliding clock.
// Callers must hold c.mu in at least read mode.
func (c *Core) authorize(token, permissionID string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", apperrors.ErrInvalidAccessToken
	}

	userID, err := c.sessions.resolve(token)
	if err != nil {
		return "", apperrors.ErrInvalidAccessToken
	}

	if !c.index.has(permissionID, userID) {
		return "", apperrors.ErrUnauthorizedAccess
	}

	c.sessions.touch(token)
	return userID, nil
}
