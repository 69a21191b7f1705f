package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/deskhaven/authcore/pkg/errors"
)

// RoleUserBaseline is auto-assigned to every newly created user.
const RoleUserBaseline = "user_role"

// CreateUser registers a new principal. The baseline user role is assigned
// automatically when it exists in the catalog.
func (c *Core) CreateUser(token, id, name string) (UserView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return UserView{}, apperrors.NewBadRequest("user id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.createUser(id, name)
	if !ok {
		return UserView{}, apperrors.NewAlreadyExists(fmt.Sprintf("user %s already exists", id))
	}

	if baseline, ok := c.catalog.roles[RoleUserBaseline]; ok {
		user.Roles[baseline.ID] = struct{}{}
		c.index.grantRoleClosure(c.catalog, baseline, user.ID, make(map[string]struct{}))
	}

	c.log.Debug("user created", zap.String("user_id", id))
	return user.view(), nil
}

// UpdateUserName updates the user's display name.
func (c *Core) UpdateUserName(token, id, name string) (UserView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[id]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", id))
	}

	user.Name = name
	return user.view(), nil
}

// RemoveUser deletes a principal: its active sessions are expired, its grants
// are withdrawn from the index, and its login ids are released.
func (c *Core) RemoveUser(token, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return err
	}

	user, ok := c.registry.users[id]
	if !ok {
		return apperrors.NewNotFound(fmt.Sprintf("user %s not found", id))
	}

	c.sessions.revokeUser(user.ID)
	c.index.removeUser(user.ID)
	c.registry.removeUser(user)
	c.log.Debug("user removed", zap.String("user_id", id))
	return nil
}

// GetUser returns one user, including its token history.
func (c *Core) GetUser(token, id string) (UserView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[id]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", id))
	}

	view := user.view()
	view.Tokens = c.sessions.history(user.Tokens)
	return view, nil
}

// ListUsers returns the registered users ordered by id.
func (c *Core) ListUsers(token string) ([]UserView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(c.registry.users))
	for _, user := range c.registry.users {
		views = append(views, user.view())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

// AddUserCredential attaches a new login id and password to the user. Login
// ids are unique across all users.
func (c *Core) AddUserCredential(token, userID, loginID, password string) (UserView, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" {
		return UserView{}, apperrors.NewBadRequest("login id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[userID]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", userID))
	}

	if err := c.registry.addCredential(user, loginID, password); err != nil {
		if errors.Is(err, errLoginTaken) {
			return UserView{}, apperrors.NewAlreadyExists(fmt.Sprintf("login id %s already registered", loginID))
		}
		return UserView{}, apperrors.ErrInternalServer.WithInternal(err)
	}

	c.log.Debug("credential added", zap.String("user_id", userID), zap.String("login_id", loginID))
	return user.view(), nil
}

// UpdateUserPassword re-hashes the credential for the login id under a fresh
// salt.
func (c *Core) UpdateUserPassword(token, loginID, newPassword string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return err
	}

	user, ok := c.registry.resolveLogin(loginID)
	if !ok {
		return apperrors.NewNotFound(fmt.Sprintf("login id %s not found", loginID))
	}

	if err := user.changePassword(loginID, newPassword); err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}

	c.log.Debug("password updated", zap.String("login_id", loginID))
	return nil
}

// AddUserPermission grants a permission directly to the user. Direct grants
// touch the index without any closure walk.
func (c *Core) AddUserPermission(token, userID, permissionID string) (UserView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[userID]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", userID))
	}
	if _, ok := c.catalog.permissions[permissionID]; !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("permission %s not found", permissionID))
	}
	if _, ok := user.Permissions[permissionID]; ok {
		return UserView{}, apperrors.NewAlreadyExists(fmt.Sprintf("user %s already holds permission %s", userID, permissionID))
	}

	user.Permissions[permissionID] = struct{}{}
	c.index.grant(permissionID, user.ID)
	c.log.Debug("user permission added",
		zap.String("user_id", userID),
		zap.String("permission_id", permissionID),
	)
	return user.view(), nil
}

// RemoveUserPermission withdraws a direct grant. The user's grant set is
// recomputed afterwards: a role may still provide the same permission.
func (c *Core) RemoveUserPermission(token, userID, permissionID string) (UserView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[userID]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", userID))
	}
	if _, ok := user.Permissions[permissionID]; !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s does not hold permission %s", userID, permissionID))
	}

	delete(user.Permissions, permissionID)
	c.index.rebuildUser(c.catalog, user)
	c.log.Debug("user permission removed",
		zap.String("user_id", userID),
		zap.String("permission_id", permissionID),
	)
	return user.view(), nil
}

// AddUserRole assigns a role to the user and grants the role's full closure.
func (c *Core) AddUserRole(token, userID, roleID string) (UserView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[userID]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", userID))
	}
	role, ok := c.catalog.roles[roleID]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("role %s not found", roleID))
	}
	if _, ok := user.Roles[roleID]; ok {
		return UserView{}, apperrors.NewAlreadyExists(fmt.Sprintf("user %s already holds role %s", userID, roleID))
	}

	user.Roles[roleID] = struct{}{}
	c.index.grantRoleClosure(c.catalog, role, user.ID, make(map[string]struct{}))
	c.log.Debug("user role added",
		zap.String("user_id", userID),
		zap.String("role_id", roleID),
	)
	return user.view(), nil
}

// RemoveUserRole withdraws a role assignment and recomputes the user's grant
// set from the remaining roles and direct permissions, so grants still
// provided elsewhere survive.
func (c *Core) RemoveUserRole(token, userID, roleID string) (UserView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageUsers); err != nil {
		return UserView{}, err
	}

	user, ok := c.registry.users[userID]
	if !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s not found", userID))
	}
	if _, ok := user.Roles[roleID]; !ok {
		return UserView{}, apperrors.NewNotFound(fmt.Sprintf("user %s does not hold role %s", userID, roleID))
	}

	delete(user.Roles, roleID)
	c.index.rebuildUser(c.catalog, user)
	c.log.Debug("user role removed",
		zap.String("user_id", userID),
		zap.String("role_id", roleID),
	)
	return user.view(), nil
}

// CreateService registers an externally visible capability group. Services
// document which permissions belong together; access checks never read them.
func (c *Core) CreateService(token, id, name, description string) (ServiceView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ServiceView{}, apperrors.NewBadRequest("service id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return ServiceView{}, err
	}

	svc, ok := c.registry.createService(id, name, description)
	if !ok {
		return ServiceView{}, apperrors.NewAlreadyExists(fmt.Sprintf("service %s already exists", id))
	}

	c.log.Debug("service created", zap.String("service_id", id))
	return svc.view(), nil
}

// UpdateServiceDescription updates service metadata.
func (c *Core) UpdateServiceDescription(token, id, description string) (ServiceView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return ServiceView{}, err
	}

	svc, ok := c.registry.services[id]
	if !ok {
		return ServiceView{}, apperrors.NewNotFound(fmt.Sprintf("service %s not found", id))
	}

	svc.Description = description
	return svc.view(), nil
}

// RemoveService deletes a service descriptor. Nothing references services, so
// removal never cascades.
func (c *Core) RemoveService(token, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return err
	}

	if _, ok := c.registry.services[id]; !ok {
		return apperrors.NewNotFound(fmt.Sprintf("service %s not found", id))
	}

	delete(c.registry.services, id)
	c.log.Debug("service removed", zap.String("service_id", id))
	return nil
}

// GetService returns one service.
func (c *Core) GetService(token, id string) (ServiceView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return ServiceView{}, err
	}

	svc, ok := c.registry.services[id]
	if !ok {
		return ServiceView{}, apperrors.NewNotFound(fmt.Sprintf("service %s not found", id))
	}
	return svc.view(), nil
}

// ListServices returns the registered services ordered by id.
func (c *Core) ListServices(token string) ([]ServiceView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return nil, err
	}

	views := make([]ServiceView, 0, len(c.registry.services))
	for _, svc := range c.registry.services {
		views = append(views, svc.view())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

// AddServicePermission appends a permission to the service's list.
func (c *Core) AddServicePermission(token, serviceID, permissionID string) (ServiceView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return ServiceView{}, err
	}

	svc, ok := c.registry.services[serviceID]
	if !ok {
		return ServiceView{}, apperrors.NewNotFound(fmt.Sprintf("service %s not found", serviceID))
	}
	if _, ok := c.catalog.permissions[permissionID]; !ok {
		return ServiceView{}, apperrors.NewNotFound(fmt.Sprintf("permission %s not found", permissionID))
	}
	for _, id := range svc.Permissions {
		if id == permissionID {
			return ServiceView{}, apperrors.NewAlreadyExists(fmt.Sprintf("service %s already lists permission %s", serviceID, permissionID))
		}
	}

	svc.Permissions = append(svc.Permissions, permissionID)
	return svc.view(), nil
}

// RemoveServicePermission removes a permission from the service's list.
func (c *Core) RemoveServicePermission(token, serviceID, permissionID string) (ServiceView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(token, PermManageServices); err != nil {
		return ServiceView{}, err
	}

	svc, ok := c.registry.services[serviceID]
	if !ok {
		return ServiceView{}, apperrors.NewNotFound(fmt.Sprintf("service %s not found", serviceID))
	}

	for i, id := range svc.Permissions {
		if id == permissionID {
			svc.Permissions = append(svc.Permissions[:i], svc.Permissions[i+1:]...)
			return svc.view(), nil
		}
	}
	return ServiceView{}, apperrors.NewNotFound(fmt.Sprintf("service %s does not list permission %s", serviceID, permissionID))
}
