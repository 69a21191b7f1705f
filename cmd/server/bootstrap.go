package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/api"
	"github.com/deskhaven/authcore/internal/app"
	"github.com/deskhaven/authcore/internal/app/maintenance"
	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/crypto"
)

// generatedPasswordLength is the byte length of an auto-generated admin
// password when bootstrap.admin_password is left blank.
const generatedPasswordLength = 18

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	Core    *core.Core
	Sweeper *maintenance.Sweeper
	Router  *gin.Engine
}

// bootstrapRuntime initialises the authorization core, seeds the bootstrap
// administrator, and builds the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Core = core.New(core.Config{
		SessionTimeout: cfg.Session.IdleTimeout,
		TokenLength:    cfg.Session.TokenLength,
	})

	if err := seedAdministrator(stack.Core, cfg, log); err != nil {
		return nil, err
	}

	if cfg.Session.Sweep.Enabled {
		stack.Sweeper = maintenance.NewSweeper(stack.Core, maintenance.WithSchedule(cfg.Session.Sweep.Schedule))
		if err := stack.Sweeper.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.Core, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Sweeper != nil {
		<-s.Sweeper.Stop().Done()
		if err := s.Sweeper.RunOnce(); err != nil {
			log.Warn("maintenance shutdown sweep failed", zap.Error(err))
		}
	}
}

// seedAdministrator installs the bootstrap admin on an empty core. When no
// password is configured a random one is generated and logged once; it is
// never persisted anywhere else.
func seedAdministrator(authCore *core.Core, cfg *app.Config, log *zap.Logger) error {
	adminUserID := strings.TrimSpace(cfg.Bootstrap.AdminUserID)
	adminLogin := strings.TrimSpace(cfg.Bootstrap.AdminLogin)
	if adminUserID == "" || adminLogin == "" {
		return fmt.Errorf("bootstrap.admin_user_id and bootstrap.admin_login must be configured")
	}

	password := cfg.Bootstrap.AdminPassword
	generated := false
	if strings.TrimSpace(password) == "" {
		var err error
		password, err = crypto.GenerateToken(generatedPasswordLength)
		if err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		generated = true
	}

	result, err := authCore.Seed(adminUserID, adminLogin, password)
	if err != nil {
		return fmt.Errorf("seed bootstrap administrator: %w", err)
	}

	if generated {
		log.Info("generated bootstrap admin password",
			zap.String("admin_login", result.AdminLogin),
			zap.String("password", password),
		)
	} else {
		log.Info("bootstrap administrator seeded", zap.String("admin_login", result.AdminLogin))
	}

	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	if strings.TrimSpace(path) == "" {
		return app.LoadConfig()
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
	if info.IsDir() {
		return app.LoadConfig(path)
	}
	return app.LoadConfig(filepath.Dir(path))
}
