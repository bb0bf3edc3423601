package entity

// Role names an authorization role. Users carry no roles yet; the type exists
// so access policies can be expressed against it.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)
