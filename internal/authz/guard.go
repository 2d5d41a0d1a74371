package authz

// RoleAdmin and RoleUser are the only roles the app knows about.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the resolved acting user, as attached by the auth middleware.
// It never carries the password hash.
type Identity struct {
	ID    string
	Email string
	Role  string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Guard is the single place the owner-or-admin rule lives. Handlers render a
// deny as 404 so a caller cannot distinguish "not yours" from "does not exist".
type Guard struct{}

func NewGuard() Guard {
	return Guard{}
}

// CanAccess reports whether identity may operate on a resource owned by
// ownerID. A resource with an empty owner matches no non-admin caller.
func (Guard) CanAccess(identity Identity, ownerID string) bool {
	if identity.IsAdmin() {
		return true
	}

	if ownerID == "" || identity.ID == "" {
		return false
	}

	return ownerID == identity.ID
}

// ListScope narrows list queries: non-admins only ever see their own records.
// scoped is false for admins, meaning the query runs unfiltered.
func (Guard) ListScope(identity Identity) (ownerID string, scoped bool) {
	if identity.IsAdmin() {
		return "", false
	}

	return identity.ID, true
}
