package entities

import "time"

// Principal is the identity acting on a request. A nil *Principal is anonymous.
type Principal struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	IsAdmin   bool

	// TokenID and ExpiresAt describe the access token the principal was resolved from.
	TokenID   string
	ExpiresAt time.Time

	// SessionID is shared with the refresh token of the same login; SessionExpiresAt is when it lapses.
	SessionID        string
	SessionExpiresAt time.Time
}

// PrincipalFromUser builds a principal from the stored user record.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
	}
}

// Is reports whether the principal is the user with the given ID.
func (p *Principal) Is(userID string) bool {
	return p != nil && p.UserID == userID
}
