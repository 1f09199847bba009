package domain

import "github.com/google/uuid"

// Identity is the outcome of optional authentication: either an
// authenticated user or an anonymous caller.
type Identity struct {
	userID        uuid.UUID
	authenticated bool
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(userID uuid.UUID) Identity {
	if userID == uuid.Nil {
		return Anonymous()
	}
	return Identity{userID: userID, authenticated: true}
}

// UserID returns the caller id and whether the caller is authenticated.
func (i Identity) UserID() (uuid.UUID, bool) {
	return i.userID, i.authenticated
}

func (i Identity) IsAnonymous() bool {
	return !i.authenticated
}

func (i Identity) String() string {
	if !i.authenticated {
		return "anonymous"
	}
	return i.userID.String()
}
