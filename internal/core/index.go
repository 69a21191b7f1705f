package core

// grantIndex is the derived permission -> grantee-set mapping consulted for
// every authorization decision. It is maintained incrementally on entitlement
// mutations and is never recomputed at query time. The catalog and registry
// remain the source of truth.
type grantIndex struct {
	grants map[string]map[string]struct{} // permission id -> user ids
}

func newGrantIndex() *grantIndex {
	return &grantIndex{grants: make(map[string]map[string]struct{})}
}

// ensurePermission guarantees the permission has an entry, possibly empty,
// before any user can be checked against it.
func (idx *grantIndex) ensurePermission(permissionID string) {
	if _, ok := idx.grants[permissionID]; !ok {
		idx.grants[permissionID] = make(map[string]struct{})
	}
}

// dropPermission removes the entry for a deleted permission.
func (idx *grantIndex) dropPermission(permissionID string) {
	delete(idx.grants, permissionID)
}

// has reports whether the user currently holds the permission.
func (idx *grantIndex) has(permissionID, userID string) bool {
	grantees, ok := idx.grants[permissionID]
	if !ok {
		return false
	}
	_, ok = grantees[userID]
	return ok
}

func (idx *grantIndex) grant(permissionID, userID string) {
	idx.ensurePermission(permissionID)
	idx.grants[permissionID][userID] = struct{}{}
}

func (idx *grantIndex) revoke(permissionID, userID string) {
	if grantees, ok := idx.grants[permissionID]; ok {
		delete(grantees, userID)
	}
}

// grantRoleClosure walks the role's permissions and subroles depth-first and
// grants everything reachable to the user. The visited set guards against
// accidental cycles in the subrole graph.
func (idx *grantIndex) grantRoleClosure(cat *catalog, role *Role, userID string, visited map[string]struct{}) {
	if _, seen := visited[role.ID]; seen {
		return
	}
	visited[role.ID] = struct{}{}

	for permissionID := range role.Permissions {
		idx.grant(permissionID, userID)
	}
	for subID := range role.Subroles {
		if sub, ok := cat.roles[subID]; ok {
			idx.grantRoleClosure(cat, sub, userID, visited)
		}
	}
}

// rebuildUser recomputes the user's grant set from the source of truth:
// direct permissions plus the closure of every still-held role. Revocations
// go through here rather than subtracting one role's closure, which would
// incorrectly drop grants that another held role still provides.
func (idx *grantIndex) rebuildUser(cat *catalog, user *User) {
	for _, grantees := range idx.grants {
		delete(grantees, user.ID)
	}

	for permissionID := range user.Permissions {
		idx.grant(permissionID, user.ID)
	}

	visited := make(map[string]struct{})
	for roleID := range user.Roles {
		if role, ok := cat.roles[roleID]; ok {
			idx.grantRoleClosure(cat, role, user.ID, visited)
		}
	}
}

// removeUser drops the user from every grantee set.
func (idx *grantIndex) removeUser(userID string) {
	for _, grantees := range idx.grants {
		delete(grantees, userID)
	}
}
