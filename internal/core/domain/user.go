package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrIdentityNotFound is returned when a caller presents a verified user id
// that no longer exists in storage. It is never downgraded to an anonymous
// submission.
var ErrIdentityNotFound = errors.New("authenticated identity not found")

// AnonymousName is the display name used for placeholder accounts and for
// users who never set a name.
const AnonymousName = "Anonymous"

// User models an account that owns submissions. Anonymous placeholders carry
// a generated unique email and an empty password hash, so they can never
// authenticate.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Anonymous reports whether the account is a placeholder identity.
func (u *User) Anonymous() bool {
	return u.PasswordHash == ""
}

// DisplayName returns the name shown on submissions and comments.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return AnonymousName
	}
	return u.Name
}
