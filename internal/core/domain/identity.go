package domain

// Role is the marketplace-wide role of an authenticated principal.
type Role string

const (
	RoleUser       Role = "USER"       // brand account
	RoleInfluencer Role = "INFLUENCER" // creator account
	RoleAdmin      Role = "ADMIN"
)

// RequiresProfile reports whether the role cannot use the dashboard without a
// completed profile. Admins have no profile at all.
func (r Role) RequiresProfile() bool {
	return r == RoleUser || r == RoleInfluencer
}

// Valid reports whether r is one of the known marketplace roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleInfluencer || r == RoleAdmin
}

// Identity models the authenticated principal as returned by GET /identity.
// It is immutable for the lifetime of a session; it only changes through
// login/logout, which invalidate the session cache.
type Identity struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Role          Role            `json:"role"`
	Status        string          `json:"status"`
	EmailVerified bool            `json:"email_verified"`
	Profile       *RegularProfile `json:"profile,omitempty"`
}
