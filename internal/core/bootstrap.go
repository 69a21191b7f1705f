package core

import (
	"fmt"

	"go.uber.org/zap"
)

// RoleAdmin aggregates the core's administrative permissions.
const RoleAdmin = "admin_role"

// SeedResult describes what the bootstrap created.
type SeedResult struct {
	AdminUserID string
	AdminLogin  string
}

// adminPermissions is the vocabulary seeded at bootstrap. The very first
// permissions ever created must be protected by permissions that do not yet
// exist, so the administrator's grants are written straight into the grant
// index here instead of going through the authorization-checked facade.
var adminPermissions = []Permission{
	{ID: PermManagePermissions, Name: "Manage permissions", Description: "Create, update, and remove permissions"},
	{ID: PermManageRoles, Name: "Manage roles", Description: "Create, update, and remove roles and their entitlements"},
	{ID: PermManageUsers, Name: "Manage users", Description: "Create, update, and remove users and their grants"},
	{ID: PermManageServices, Name: "Manage services", Description: "Create, update, and remove service descriptors"},
}

// Seed installs the administrative catalog, the baseline user role, and the
// bootstrap administrator. It must run exactly once, before any traffic, on
// an empty core.
func (c *Core) Seed(adminUserID, adminLogin, adminPassword string) (SeedResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.catalog.permissions) != 0 || len(c.registry.users) != 0 {
		return SeedResult{}, fmt.Errorf("core: seed requires an empty core")
	}

	for _, perm := range adminPermissions {
		if _, ok := c.catalog.createPermission(perm.ID, perm.Name, perm.Description); !ok {
			return SeedResult{}, fmt.Errorf("core: seed permission %s", perm.ID)
		}
		c.index.ensurePermission(perm.ID)
	}

	adminRole, ok := c.catalog.createRole(RoleAdmin, "Administrator", "Full control over the authorization core")
	if !ok {
		return SeedResult{}, fmt.Errorf("core: seed role %s", RoleAdmin)
	}
	for _, perm := range adminPermissions {
		adminRole.Permissions[perm.ID] = struct{}{}
	}

	if _, ok := c.catalog.createRole(RoleUserBaseline, "User", "Baseline role assigned to every user"); !ok {
		return SeedResult{}, fmt.Errorf("core: seed role %s", RoleUserBaseline)
	}

	admin, ok := c.registry.createUser(adminUserID, "Administrator")
	if !ok {
		return SeedResult{}, fmt.Errorf("core: seed user %s", adminUserID)
	}
	admin.Roles[RoleAdmin] = struct{}{}
	admin.Roles[RoleUserBaseline] = struct{}{}

	if err := c.registry.addCredential(admin, adminLogin, adminPassword); err != nil {
		return SeedResult{}, fmt.Errorf("core: seed admin credential: %w", err)
	}

	// Direct index write; the one place grants bypass the facade.
	c.index.grantRoleClosure(c.catalog, adminRole, admin.ID, make(map[string]struct{}))

	c.log.Info("bootstrap seed complete",
		zap.String("admin_user_id", adminUserID),
		zap.String("admin_login", adminLogin),
	)

	return SeedResult{AdminUserID: adminUserID, AdminLogin: adminLogin}, nil
}
