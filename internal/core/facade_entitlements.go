package core

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/deskhaven/authcore/pkg/errors"
)

// Permission vocabulary protecting the core's own administrative surface.
const (
	PermManagePermissions = "auth.permission.manage"
	PermManageRoles       = "auth.role.manage"
	PermManageUsers       = "auth.user.manage"
	PermManageServices    = "auth.service.manage"
)

// CreatePermission registers a new permission and gives it an empty entry in
// the grant index before anyone can be checked against it.
func (c *Core) CreatePermission(token, id, name, description string) (PermissionView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PermissionView{}, apperrors.NewBadRequest("permission id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManagePermissions); err != nil {
		return PermissionView{}, err
	}

	perm, ok := c.catalog.createPermission(id, name, description)
	if !ok {
		return PermissionView{}, apperrors.NewAlreadyExists(fmt.Sprintf("entitlement id %s already exists", id))
	}

	c.index.ensurePermission(id)
	c.log.Debug("permission created", zap.String("permission_id", id))
	return perm.view(), nil
}

// UpdatePermissionDescription updates permission metadata; the id and name
// are immutable.
func (c *Core) UpdatePermissionDescription(token, id, description string) (PermissionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManagePermissions); err != nil {
		return PermissionView{}, err
	}

	perm, ok := c.catalog.permissions[id]
	if !ok {
		return PermissionView{}, apperrors.NewNotFound(fmt.Sprintf("permission %s not found", id))
	}

	perm.Description = description
	return perm.view(), nil
}

// RemovePermission deletes a permission. It fails while any role, user, or
// service still references it; nothing cascades implicitly.
func (c *Core) RemovePermission(token, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManagePermissions); err != nil {
		return err
	}

	if _, ok := c.catalog.permissions[id]; !ok {
		return apperrors.NewNotFound(fmt.Sprintf("permission %s not found", id))
	}

	if c.catalog.permissionReferenced(id) ||
		c.registry.userPermissionReferenced(id) ||
		c.registry.servicePermissionReferenced(id) {
		return apperrors.ErrStillReferenced
	}

	delete(c.catalog.permissions, id)
	c.index.dropPermission(id)
	c.log.Debug("permission removed", zap.String("permission_id", id))
	return nil
}

// GetPermission returns one permission.
func (c *Core) GetPermission(token, id string) (PermissionView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManagePermissions); err != nil {
		return PermissionView{}, err
	}

	perm, ok := c.catalog.permissions[id]
	if !ok {
		return PermissionView{}, apperrors.NewNotFound(fmt.Sprintf("permission %s not found", id))
	}
	return perm.view(), nil
}

// ListPermissions returns the catalog's permissions ordered by id.
func (c *Core) ListPermissions(token string) ([]PermissionView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManagePermissions); err != nil {
		return nil, err
	}

	views := make([]PermissionView, 0, len(c.catalog.permissions))
	for _, perm := range c.catalog.permissions {
		views = append(views, perm.view())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

// CreateRole registers a new role with empty permission and subrole sets.
func (c *Core) CreateRole(token, id, name, description string) (RoleView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RoleView{}, apperrors.NewBadRequest("role id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	role, ok := c.catalog.createRole(id, name, description)
	if !ok {
		return RoleView{}, apperrors.NewAlreadyExists(fmt.Sprintf("entitlement id %s already exists", id))
	}

	c.log.Debug("role created", zap.String("role_id", id))
	return role.view(), nil
}

// UpdateRoleDescription updates role metadata; the id and name are immutable.
func (c *Core) UpdateRoleDescription(token, id, description string) (RoleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	role, ok := c.catalog.roles[id]
	if !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", id))
	}

	role.Description = description
	return role.view(), nil
}

// RemoveRole deletes a role. It fails while any user holds the role or any
// other role lists it as a subrole.
func (c *Core) RemoveRole(token, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return err
	}

	if _, ok := c.catalog.roles[id]; !ok {
		return apperrors.NewNotFound(fmt.Sprintf("role %s not found", id))
	}

	if c.catalog.roleReferenced(id) || c.registry.userRoleReferenced(id) {
		return apperrors.ErrStillReferenced
	}

	delete(c.catalog.roles, id)
	c.log.Debug("role removed", zap.String("role_id", id))
	return nil
}

// GetRole returns one role.
func (c *Core) GetRole(token, id string) (RoleView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	role, ok := c.catalog.roles[id]
	if !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", id))
	}
	return role.view(), nil
}

// ListRoles returns the catalog's roles ordered by id.
func (c *Core) ListRoles(token string) ([]RoleView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return nil, err
	}

	views := make([]RoleView, 0, len(c.catalog.roles))
	for _, role := range c.catalog.roles {
		views = append(views, role.view())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

// AddRolePermission adds a permission to the role's direct set and rebuilds
// the grants of every user entitled to the role, directly or through any
// ancestor role.
func (c *Core) AddRolePermission(token, roleID, permissionID string) (RoleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	role, ok := c.catalog.roles[roleID]
	if !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", roleID))
	}
	if _, ok := c.catalog.permissions[permissionID]; !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("permission %s not found", permissionID))
	}
	if _, ok := role.Permissions[permissionID]; ok {
		return RoleView{}, apperrors.NewAlreadyExists(fmt.Sprintf("role %s already holds permission %s", roleID, permissionID))
	}

	role.Permissions[permissionID] = struct{}{}
	c.rebuildRoleHolders(roleID)
	c.log.Debug("role permission added",
		zap.String("role_id", roleID),
		zap.String("permission_id", permissionID),
	)
	return role.view(), nil
}

// RemoveRolePermission removes a permission from the role's direct set and
// rebuilds affected users' grants from the remaining source of truth.
func (c *Core) RemoveRolePermission(token, roleID, permissionID string) (RoleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	role, ok := c.catalog.roles[roleID]
	if !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", roleID))
	}
	if _, ok := role.Permissions[permissionID]; !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s does not hold permission %s", roleID, permissionID))
	}

	delete(role.Permissions, permissionID)
	c.rebuildRoleHolders(roleID)
	c.log.Debug("role permission removed",
		zap.String("role_id", roleID),
		zap.String("permission_id", permissionID),
	)
	return role.view(), nil
}

// AddRoleSubrole nests a role under another. Edges that would make the parent
// reachable from itself are rejected so closure walks always terminate.
func (c *Core) AddRoleSubrole(token, roleID, subroleID string) (RoleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	return c.addSubroleLocked(roleID, subroleID)
}

// RemoveRoleSubrole detaches a subrole and rebuilds affected users' grants.
func (c *Core) RemoveRoleSubrole(token, roleID, subroleID string) (RoleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	role, ok := c.catalog.roles[roleID]
	if !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", roleID))
	}
	if _, ok := role.Subroles[subroleID]; !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s does not contain subrole %s", roleID, subroleID))
	}

	delete(role.Subroles, subroleID)
	c.rebuildRoleHolders(roleID)
	c.log.Debug("subrole removed",
		zap.String("role_id", roleID),
		zap.String("subrole_id", subroleID),
	)
	return role.view(), nil
}

// AddRoleEntitlement adds a permission or a subrole to the role, dispatching
// on what the entitlement id names. Ids are unique across both kinds, so the
// dispatch is never ambiguous.
func (c *Core) AddRoleEntitlement(token, roleID, entitlementID string) (RoleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageRoles); err != nil {
		return RoleView{}, err
	}

	switch c.catalog.kindOf(entitlementID) {
	case entitlementPermission:
		role, ok := c.catalog.roles[roleID]
		if !ok {
			return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", roleID))
		}
		if _, ok := role.Permissions[entitlementID]; ok {
			return RoleView{}, apperrors.NewAlreadyExists(fmt.Sprintf("role %s already holds permission %s", roleID, entitlementID))
		}
		role.Permissions[entitlementID] = struct{}{}
		c.rebuildRoleHolders(roleID)
		return role.view(), nil
	case entitlementRole:
		return c.addSubroleLocked(roleID, entitlementID)
	default:
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("entitlement %s not found", entitlementID))
	}
}

func (c *Core) addSubroleLocked(roleID, subroleID string) (RoleView, error) {
	role, ok := c.catalog.roles[roleID]
	if !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", roleID))
	}
	if _, ok := c.catalog.roles[subroleID]; !ok {
		return RoleView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", subroleID))
	}
	if _, ok := role.Subroles[subroleID]; ok {
		return RoleView{}, apperrors.NewAlreadyExists(fmt.Sprintf("role %s already contains subrole %s", roleID, subroleID))
	}
	if c.catalog.subroleWouldCycle(roleID, subroleID) {
		return RoleView{}, apperrors.NewBadRequest(fmt.Sprintf("adding subrole %s to %s would create a cycle", subroleID, roleID))
	}

	role.Subroles[subroleID] = struct{}{}
	c.rebuildRoleHolders(roleID)
	c.log.Debug("subrole added",
		zap.String("role_id", roleID),
		zap.String("subrole_id", subroleID),
	)
	return role.view(), nil
}

// rebuildRoleHolders recomputes the grant sets of every user holding the
// edited role or any role whose closure reaches it. Callers must hold the
// write lock.
func (c *Core) rebuildRoleHolders(roleID string) {
	reaching := c.catalog.rolesReaching(roleID)
	for _, user := range c.registry.usersHoldingAny(reaching) {
		c.index.rebuildUser(c.catalog, user)
	}
}
