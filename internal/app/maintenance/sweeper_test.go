package maintenance

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deskhaven/authcore/internal/core"
	apperrors "github.com/deskhaven/authcore/pkg/errors"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
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

func TestRunOnceExpiresIdleTokens(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	authCore := core.New(core.Config{SessionTimeout: time.Minute, Clock: clock.Now})

	_, err := authCore.Seed("admin", "admin", "pw")
	require.NoError(t, err)
	token, err := authCore.Login("admin", "pw")
	require.NoError(t, err)

	sweeper := NewSweeper(authCore, WithSchedule("@every 1m"))

	// Fresh token survives a sweep.
	require.NoError(t, sweeper.RunOnce())
	require.NoError(t, authCore.CheckAccess(core.PermManageRoles, token.ID))

	clock.Advance(2 * time.Minute)
	require.NoError(t, sweeper.RunOnce())

	err = authCore.CheckAccess(core.PermManageRoles, token.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAccessToken))
}

func TestRunOnceRequiresCore(t *testing.T) {
	sweeper := NewSweeper(nil)
	require.Error(t, sweeper.RunOnce())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	authCore := core.New(core.Config{})
	sweeper := NewSweeper(authCore, WithSchedule("not-a-spec"))
	require.Error(t, sweeper.Start())
	sweeper.Stop()
}
