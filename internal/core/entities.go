package core

import (
	"sort"
	"time"
)

// TokenState describes the lifecycle state of an access token. The only legal
// transition is ACTIVE -> EXPIRED; expired tokens are retained for history.
type TokenState string

const (
	TokenActive  TokenState = "ACTIVE"
	TokenExpired TokenState = "EXPIRED"
)

// Permission is a leaf entitlement guarding one restricted operation.
type Permission struct {
	ID          string
	Name        string
	Description string
}

// Role is a composite entitlement: it owns permissions directly and may
// reference other roles by id. The subrole graph is kept acyclic at edit time.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions map[string]struct{}
	Subroles    map[string]struct{}
}

// Service groups the permissions exposed by one externally visible capability.
// It documents the catalog; access checks never consult it.
type Service struct {
	ID          string
	Name        string
	Description string
	Permissions []string
}

// Credential holds a salted one-way digest for one login id. The password is
// never stored.
type Credential struct {
	LoginID string
	salt    []byte
	digest  []byte
}

// AccessToken is an opaque session handle bound to exactly one user for its
// whole lifetime.
type AccessToken struct {
	ID             string
	UserID         string
	State          TokenState
	LastAccessTime time.Time
}

// User is a registered principal: credentials, direct permission grants,
// assigned roles, and the full token history.
type User struct {
	ID          string
	Name        string
	Credentials map[string]*Credential
	Permissions map[string]struct{}
	Roles       map[string]struct{}
	Tokens      []string
}

// PermissionView is the externally visible snapshot of a permission.
type PermissionView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleView is the externally visible snapshot of a role.
type RoleView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Subroles    []string `json:"subroles"`
}

// ServiceView is the externally visible snapshot of a service.
type ServiceView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// TokenView is the externally visible snapshot of an access token.
type TokenView struct {
	ID             string     `json:"id"`
	State          TokenState `json:"state"`
	LastAccessTime time.Time  `json:"last_access_time"`
}

// UserView is the externally visible snapshot of a user.
type UserView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	LoginIDs    []string    `json:"login_ids"`
	Permissions []string    `json:"permissions"`
	Roles       []string    `json:"roles"`
	Tokens      []TokenView `json:"tokens,omitempty"`
}

func (p *Permission) view() PermissionView {
	return PermissionView{ID: p.ID, Name: p.Name, Description: p.Description}
}

func (r *Role) view() RoleView {
	return RoleView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: sortedKeys(r.Permissions),
		Subroles:    sortedKeys(r.Subroles),
	}
}

func (s *Service) view() ServiceView {
	perms := make([]string, len(s.Permissions))
	copy(perms, s.Permissions)
	return ServiceView{ID: s.ID, Name: s.Name, Description: s.Description, Permissions: perms}
}

func (t *AccessToken) view() TokenView {
	return TokenView{ID: t.ID, State: t.State, LastAccessTime: t.LastAccessTime}
}

func (u *User) view() UserView {
	logins := make([]string, 0, len(u.Credentials))
	for loginID := range u.Credentials {
		logins = append(logins, loginID)
	}
	sort.Strings(logins)

	return UserView{
		ID:          u.ID,
		Name:        u.Name,
		LoginIDs:    logins,
		Permissions: sortedKeys(u.Permissions),
		Roles:       sortedKeys(u.Roles),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
