package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/deskhaven/authcore/pkg/errors"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const (
	testTimeout   = 30 * time.Minute
	adminLogin    = "admin"
	adminPassword = "bootstrap-secret"
)

// newSeededCore returns a seeded core, a logged-in admin token, and the clock.
func newSeededCore(t *testing.T) (*Core, string, *testClock) {
	t.Helper()

	clock := newTestClock()
	c := New(Config{SessionTimeout: testTimeout, Clock: clock.Now})

	_, err := c.Seed("admin", adminLogin, adminPassword)
	require.NoError(t, err)

	token, err := c.Login(adminLogin, adminPassword)
	require.NoError(t, err)

	return c, token.ID, clock
}

func TestSeedRequiresEmptyCore(t *testing.T) {
	c, _, _ := newSeededCore(t)

	_, err := c.Seed("admin2", "admin2", "pw")
	require.Error(t, err)
}

func TestLoginUnknownLoginID(t *testing.T) {
	c, _, _ := newSeededCore(t)

	_, err := c.Login("nobody", "pw")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidUserID))
}

func TestLoginWrongPassword(t *testing.T) {
	c, _, _ := newSeededCore(t)

	_, err := c.Login(adminLogin, "wrong")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidPassword))
}

func TestSingleActiveSessionPerLoginID(t *testing.T) {
	c, _, _ := newSeededCore(t)

	_, err := c.Login(adminLogin, adminPassword)
	require.True(t, apperrors.Is(err, apperrors.ErrAlreadyLoggedIn))
}

func TestLoginAfterLogout(t *testing.T) {
	c, token, _ := newSeededCore(t)

	require.NoError(t, c.Logout(token))

	again, err := c.Login(adminLogin, adminPassword)
	require.NoError(t, err)
	require.NotEqual(t, token, again.ID)
}

func TestLoginAllowedAfterIdleExpiry(t *testing.T) {
	c, _, clock := newSeededCore(t)

	clock.Advance(testTimeout + time.Second)

	// The stale token has not been presented, but a fresh login must not be
	// blocked by a session that is already past its idle window.
	_, err := c.Login(adminLogin, adminPassword)
	require.NoError(t, err)
}

func TestCheckAccessGrantsAdmin(t *testing.T) {
	c, token, _ := newSeededCore(t)

	require.NoError(t, c.CheckAccess(PermManageRoles, token))
	require.NoError(t, c.CheckAccess(PermManageUsers, token))
}

func TestCheckAccessRejectsBadTokens(t *testing.T) {
	c, _, _ := newSeededCore(t)

	err := c.CheckAccess(PermManageRoles, "")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))

	err = c.CheckAccess(PermManageRoles, "no-such-token")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestCheckAccessUnknownPermissionDenied(t *testing.T) {
	c, token, _ := newSeededCore(t)

	err := c.CheckAccess("phantom.permission", token)
	require.True(t, apperrors.Is(err, apperrors.ErrUnauthorizedAccess))
}

func TestTokenSlidingExpiry(t *testing.T) {
	c, token, clock := newSeededCore(t)

	// Each successful check resets the idle clock.
	for i := 0; i < 3; i++ {
		clock.Advance(testTimeout - time.Minute)
		require.NoError(t, c.CheckAccess(PermManageRoles, token))
	}

	// Left idle past the timeout, the very next check fails even though the
	// preceding one succeeded.
	clock.Advance(testTimeout + time.Second)
	err := c.CheckAccess(PermManageRoles, token)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))

	// Expiry is terminal.
	clock.Advance(-2 * testTimeout)
	err = c.CheckAccess(PermManageRoles, token)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestFailedCheckDoesNotSlideExpiry(t *testing.T) {
	c, token, clock := newSeededCore(t)

	clock.Advance(testTimeout - time.Minute)
	err := c.CheckAccess("phantom.permission", token)
	require.True(t, apperrors.Is(err, apperrors.ErrUnauthorizedAccess))

	// The denied check must not have refreshed the clock.
	clock.Advance(2 * time.Minute)
	err = c.CheckAccess(PermManageRoles, token)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestLogoutExpiredTokenFails(t *testing.T) {
	c, token, clock := newSeededCore(t)

	clock.Advance(testTimeout + time.Second)

	err := c.Logout(token)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))

	// Logging out twice is also an error.
	c2, token2, _ := newSeededCore(t)
	require.NoError(t, c2.Logout(token2))
	err = c2.Logout(token2)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestExpiredTokensRetainedInHistory(t *testing.T) {
	c, token, _ := newSeededCore(t)

	require.NoError(t, c.Logout(token))

	again, err := c.Login(adminLogin, adminPassword)
	require.NoError(t, err)

	view, err := c.GetUser(again.ID, "admin")
	require.NoError(t, err)
	require.Len(t, view.Tokens, 2)
	require.Equal(t, TokenExpired, view.Tokens[0].State)
	require.Equal(t, TokenActive, view.Tokens[1].State)
}

func TestMutatingOpsRequireValidToken(t *testing.T) {
	c, _, _ := newSeededCore(t)

	_, err := c.CreatePermission("bogus", "p1", "P1", "")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))

	_, err = c.CreateRole("", "r1", "R1", "")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestMutatingOpsRequirePermission(t *testing.T) {
	c, adminToken, _ := newSeededCore(t)

	_, err := c.CreateUser(adminToken, "u1", "User One")
	require.NoError(t, err)
	_, err = c.AddUserCredential(adminToken, "u1", "u1-login", "u1-password")
	require.NoError(t, err)

	userToken, err := c.Login("u1-login", "u1-password")
	require.NoError(t, err)

	// u1 only holds the baseline role, which grants nothing.
	_, err = c.CreatePermission(userToken.ID, "p1", "P1", "")
	require.True(t, apperrors.Is(err, apperrors.ErrUnauthorizedAccess))

	_, err = c.AddUserRole(userToken.ID, "u1", RoleAdmin)
	require.True(t, apperrors.Is(err, apperrors.ErrUnauthorizedAccess))
}

func TestGrantCheckRevokeScenario(t *testing.T) {
	c, token, _ := newSeededCore(t)

	_, err := c.CreatePermission(token, "booking.create", "Create booking", "")
	require.NoError(t, err)
	_, err = c.CreateRole(token, "renter_role", "Renter", "")
	require.NoError(t, err)
	_, err = c.AddRolePermission(token, "renter_role", "booking.create")
	require.NoError(t, err)

	_, err = c.CreateUser(token, "u1", "User One")
	require.NoError(t, err)
	_, err = c.AddUserCredential(token, "u1", "u1-login", "u1-password")
	require.NoError(t, err)
	_, err = c.AddUserRole(token, "u1", "renter_role")
	require.NoError(t, err)

	userToken, err := c.Login("u1-login", "u1-password")
	require.NoError(t, err)
	require.NoError(t, c.CheckAccess("booking.create", userToken.ID))

	_, err = c.RemoveUserRole(token, "u1", "renter_role")
	require.NoError(t, err)

	err = c.CheckAccess("booking.create", userToken.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrUnauthorizedAccess))
}

func TestGrantRoleTwiceFailsAndLeavesIndexUnchanged(t *testing.T) {
	c, token, _ := newSeededCore(t)

	_, err := c.CreatePermission(token, "p1", "P1", "")
	require.NoError(t, err)
	_, err = c.CreateRole(token, "r1", "R1", "")
	require.NoError(t, err)
	_, err = c.AddRolePermission(token, "r1", "p1")
	require.NoError(t, err)
	_, err = c.CreateUser(token, "u1", "User One")
	require.NoError(t, err)

	_, err = c.AddUserRole(token, "u1", "r1")
	require.NoError(t, err)
	_, err = c.AddUserRole(token, "u1", "r1")
	require.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))

	c.mu.RLock()
	defer c.mu.RUnlock()
	require.True(t, c.index.has("p1", "u1"))
	require.Len(t, c.index.grants["p1"], 1)
}

func TestNewUserGetsBaselineRole(t *testing.T) {
	c, token, _ := newSeededCore(t)

	view, err := c.CreateUser(token, "u1", "User One")
	require.NoError(t, err)
	require.Contains(t, view.Roles, RoleUserBaseline)
}

func TestRemoveUserExpiresSessionsAndGrants(t *testing.T) {
	c, token, _ := newSeededCore(t)

	_, err := c.CreateUser(token, "u1", "User One")
	require.NoError(t, err)
	_, err = c.AddUserCredential(token, "u1", "u1-login", "u1-password")
	require.NoError(t, err)
	userToken, err := c.Login("u1-login", "u1-password")
	require.NoError(t, err)

	require.NoError(t, c.RemoveUser(token, "u1"))

	err = c.CheckAccess(PermManageRoles, userToken.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))

	// The login id is released for reuse.
	_, err = c.CreateUser(token, "u2", "User Two")
	require.NoError(t, err)
	_, err = c.AddUserCredential(token, "u2", "u1-login", "pw")
	require.NoError(t, err)
}

func TestSweepExpiredTokens(t *testing.T) {
	c, token, clock := newSeededCore(t)

	clock.Advance(testTimeout + time.Second)
	require.Equal(t, 1, c.SweepExpiredTokens())
	require.Equal(t, 0, c.SweepExpiredTokens())

	err := c.CheckAccess(PermManageRoles, token)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestMeReportsEffectiveState(t *testing.T) {
	c, token, _ := newSeededCore(t)

	view, err := c.Me(token)
	require.NoError(t, err)
	require.Equal(t, "admin", view.ID)
	require.Contains(t, view.Roles, RoleAdmin)
	require.Contains(t, view.LoginIDs, adminLogin)
	require.Len(t, view.Tokens, 1)

	_, err = c.Me("unknown")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestConcurrentChecksDuringEdits(t *testing.T) {
	c, token, _ := newSeededCore(t)

	_, err := c.CreatePermission(token, "p1", "P1", "")
	require.NoError(t, err)
	_, err = c.CreateRole(token, "r1", "R1", "")
	require.NoError(t, err)
	_, err = c.AddRolePermission(token, "r1", "p1")
	require.NoError(t, err)
	_, err = c.CreateUser(token, "u1", "User One")
	require.NoError(t, err)
	_, err = c.AddUserCredential(token, "u1", "u1-login", "u1-password")
	require.NoError(t, err)
	userToken, err := c.Login("u1-login", "u1-password")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			// Either pre- or post-state of the flip; never an error other
			// than Unauthorized.
			if err := c.CheckAccess("p1", userToken.ID); err != nil {
				if !apperrors.Is(err, apperrors.ErrUnauthorizedAccess) {
					t.Errorf("unexpected check error: %v", err)
					return
				}
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			if _, err := c.AddUserRole(token, "u1", "r1"); err != nil && !apperrors.Is(err, apperrors.ErrAlreadyExists) {
				t.Errorf("add role: %v", err)
				return
			}
			if _, err := c.RemoveUserRole(token, "u1", "r1"); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
				t.Errorf("remove role: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}
