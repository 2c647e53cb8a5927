package model

const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
)

// User is a resolved caller identity. Identities are looked up from a static
// registry by header value; there is no credential verification.
type User struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// IsAdmin reports whether the user may mutate records it does not own.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
