package postgres

import "strings"

// The role column stores the role list comma-joined. That encoding is a
// storage detail only; the domain always sees a []string.

func encodeRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func decodeRoles(col string) []string {
	parts := strings.Split(col, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}
