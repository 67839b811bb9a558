package entity

// Identity names the caller of a request. The anonymous identity is a
// first-class value (empty name, Authenticated=false) rather than a nil,
// so consumers never need a presence check.
type Identity struct {
	Name          string
	Authenticated bool
}

// Principal is the resolved identity plus role set attached to one request.
// It is rebuilt on every resolution and never persisted.
type Principal struct {
	Identity Identity
	Roles    []string
}

// Anonymous returns the distinguished not-authenticated principal.
func Anonymous() Principal {
	return Principal{Identity: Identity{}, Roles: []string{}}
}

// NewPrincipal returns an authenticated principal for name with the given roles.
func NewPrincipal(name string, roles []string) Principal {
	if roles == nil {
		roles = []string{}
	}
	return Principal{
		Identity: Identity{Name: name, Authenticated: true},
		Roles:    roles,
	}
}

// IsInRole reports whether the principal holds the given role.
// Always false for the anonymous principal.
func (p Principal) IsInRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
