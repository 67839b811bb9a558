package entity

// User is the aggregate root for the credential store.
// PasswordHash is opaque to the domain; only the configured hasher can
// produce or compare it. Roles are a plain list here — the comma-joined
// column format is a storage concern.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	Roles        []string
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
