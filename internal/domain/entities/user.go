package entities

import (
	"github.com/hbnb-project/hbnb/backend/internal/domain/validation"
)

// User represents an account. PasswordHash never leaves the process.
type User struct {
	Base
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	IsAdmin      bool   `json:"is_admin" db:"is_admin"`
}

// UserInput is the data needed to create a user.
type UserInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserPatch lists the mutable user fields. Nil fields are left untouched.
type UserPatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	IsAdmin   *bool   `json:"is_admin"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Password == nil && p.IsAdmin == nil
}

// NewUser validates the profile fields of in. The password is validated and
// hashed by the caller; PasswordHash is left empty.
func NewUser(in UserInput) (*User, error) {
	first, err := validation.FirstName(in.FirstName)
	if err != nil {
		return nil, err
	}
	last, err := validation.LastName(in.LastName)
	if err != nil {
		return nil, err
	}
	email, err := validation.Email(in.Email)
	if err != nil {
		return nil, err
	}
	return &User{
		Base:      NewBase(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		IsAdmin:   in.IsAdmin,
	}, nil
}

// Apply validates every supplied profile field, then assigns them together.
// Password is not handled here since it has to be hashed.
func (u *User) Apply(p UserPatch) error {
	next := *u
	var err error
	if p.FirstName != nil {
		if next.FirstName, err = validation.FirstName(*p.FirstName); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if next.LastName, err = validation.LastName(*p.LastName); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if next.Email, err = validation.Email(*p.Email); err != nil {
			return err
		}
	}
	if p.IsAdmin != nil {
		next.IsAdmin = *p.IsAdmin
	}
	next.Touch()
	*u = next
	return nil
}

// Summary is the compact form embedded in place representations.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// UserSummary is a user reference embedded in other representations.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}
