package core

// entitlementKind discriminates what an entitlement id refers to. Permission
// and role ids share one namespace, so an id resolves to at most one kind.
type entitlementKind int

const (
	entitlementUnknown entitlementKind = iota
	entitlementPermission
	entitlementRole
)

// catalog holds the permission and role entities. It is not safe for
// concurrent use; the facade serialises access.
type catalog struct {
	permissions map[string]*Permission
	roles       map[string]*Role
}

func newCatalog() *catalog {
	return &catalog{
		permissions: make(map[string]*Permission),
		roles:       make(map[string]*Role),
	}
}

func (c *catalog) kindOf(id string) entitlementKind {
	if _, ok := c.permissions[id]; ok {
		return entitlementPermission
	}
	if _, ok := c.roles[id]; ok {
		return entitlementRole
	}
	return entitlementUnknown
}

// createPermission registers a new permission. The id must be unused by any
// permission or role.
func (c *catalog) createPermission(id, name, description string) (*Permission, bool) {
	if c.kindOf(id) != entitlementUnknown {
		return nil, false
	}

	perm := &Permission{ID: id, Name: name, Description: description}
	c.permissions[id] = perm
	return perm, true
}

// createRole registers a new role with empty permission and subrole sets.
func (c *catalog) createRole(id, name, description string) (*Role, bool) {
	if c.kindOf(id) != entitlementUnknown {
		return nil, false
	}

	role := &Role{
		ID:          id,
		Name:        name,
		Description: description,
		Permissions: make(map[string]struct{}),
		Subroles:    make(map[string]struct{}),
	}
	c.roles[id] = role
	return role, true
}

// subroleWouldCycle reports whether adding childID under parentID would make
// parentID reachable from itself.
func (c *catalog) subroleWouldCycle(parentID, childID string) bool {
	if parentID == childID {
		return true
	}

	visited := make(map[string]struct{})
	var reaches func(fromID string) bool
	reaches = func(fromID string) bool {
		if fromID == parentID {
			return true
		}
		if _, seen := visited[fromID]; seen {
			return false
		}
		visited[fromID] = struct{}{}

		role, ok := c.roles[fromID]
		if !ok {
			return false
		}
		for subID := range role.Subroles {
			if reaches(subID) {
				return true
			}
		}
		return false
	}
	return reaches(childID)
}

// rolesReaching returns every role whose subrole closure contains roleID,
// including roleID itself. Users holding any of these roles are entitled to
// roleID's permissions and must be rebuilt when it changes.
func (c *catalog) rolesReaching(roleID string) map[string]struct{} {
	reaching := map[string]struct{}{roleID: {}}

	// Fixed-point over the reverse edges; the graph is small and acyclic.
	for changed := true; changed; {
		changed = false
		for id, role := range c.roles {
			if _, ok := reaching[id]; ok {
				continue
			}
			for subID := range role.Subroles {
				if _, ok := reaching[subID]; ok {
					reaching[id] = struct{}{}
					changed = true
					break
				}
			}
		}
	}
	return reaching
}

// permissionReferenced reports whether any role still lists the permission.
func (c *catalog) permissionReferenced(permissionID string) bool {
	for _, role := range c.roles {
		if _, ok := role.Permissions[permissionID]; ok {
			return true
		}
	}
	return false
}

// roleReferenced reports whether any role still lists roleID as a subrole.
func (c *catalog) roleReferenced(roleID string) bool {
	for _, role := range c.roles {
		if _, ok := role.Subroles[roleID]; ok {
			return true
		}
	}
	return false
}
