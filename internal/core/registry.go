package core

// registry tracks users, services, and the global login-id to user mapping
// used for authentication lookup. Not safe for concurrent use; the facade
// serialises access.
type registry struct {
	users    map[string]*User
	services map[string]*Service
	logins   map[string]string // login id -> user id
}

func newRegistry() *registry {
	return &registry{
		users:    make(map[string]*User),
		services: make(map[string]*Service),
		logins:   make(map[string]string),
	}
}

func (r *registry) createUser(id, name string) (*User, bool) {
	if _, exists := r.users[id]; exists {
		return nil, false
	}

	user := &User{
		ID:          id,
		Name:        name,
		Credentials: make(map[string]*Credential),
		Permissions: make(map[string]struct{}),
		Roles:       make(map[string]struct{}),
	}
	r.users[id] = user
	return user, true
}

func (r *registry) createService(id, name, description string) (*Service, bool) {
	if _, exists := r.services[id]; exists {
		return nil, false
	}

	svc := &Service{ID: id, Name: name, Description: description}
	r.services[id] = svc
	return svc, true
}

// addCredential registers a credential for the user and claims the login id
// globally. Login ids must be unique across all users so that login can
// resolve a principal from the login id alone.
func (r *registry) addCredential(user *User, loginID, password string) error {
	if _, taken := r.logins[loginID]; taken {
		return errLoginTaken
	}

	if _, err := user.addCredential(loginID, password); err != nil {
		return err
	}

	r.logins[loginID] = user.ID
	return nil
}

// resolveLogin returns the user owning the login id, if any.
func (r *registry) resolveLogin(loginID string) (*User, bool) {
	userID, ok := r.logins[loginID]
	if !ok {
		return nil, false
	}
	user, ok := r.users[userID]
	return user, ok
}

// removeUser drops the user and releases its login ids.
func (r *registry) removeUser(user *User) {
	for loginID := range user.Credentials {
		delete(r.logins, loginID)
	}
	delete(r.users, user.ID)
}

// userPermissionReferenced reports whether any user holds the permission as a
// direct grant.
func (r *registry) userPermissionReferenced(permissionID string) bool {
	for _, user := range r.users {
		if _, ok := user.Permissions[permissionID]; ok {
			return true
		}
	}
	return false
}

// userRoleReferenced reports whether any user is assigned the role.
func (r *registry) userRoleReferenced(roleID string) bool {
	for _, user := range r.users {
		if _, ok := user.Roles[roleID]; ok {
			return true
		}
	}
	return false
}

// servicePermissionReferenced reports whether any service lists the permission.
func (r *registry) servicePermissionReferenced(permissionID string) bool {
	for _, svc := range r.services {
		for _, id := range svc.Permissions {
			if id == permissionID {
				return true
			}
		}
	}
	return false
}

// usersHoldingAny returns the users assigned at least one of the given roles.
func (r *registry) usersHoldingAny(roleIDs map[string]struct{}) []*User {
	var holders []*User
	for _, user := range r.users {
		for roleID := range user.Roles {
			if _, ok := roleIDs[roleID]; ok {
				holders = append(holders, user)
				break
			}
		}
	}
	return holders
}
