package domain

// Role enumerates caller roles supplied by the auth provider.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is the opaque current-user identity read from the auth
// collaborator. The service only ever reads it; credentials are managed
// elsewhere.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Role        Role
}
