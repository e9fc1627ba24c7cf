package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field
//
// ProfileImage is either an absolute URL or a storage-relative path;
// nil means the serializer falls back to an identicon.
type User struct {
	ID              string
	Username        string
	Email           string
	Password        string
	Firstname       string
	Lastname        string
	ProfileImage    *string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// HasVerifiedEmail reports whether the email address was confirmed
func (u *User) HasVerifiedEmail() bool {
	return u.EmailVerifiedAt != nil
}

// DisplayName is used in mail greetings
func (u *User) DisplayName() string {
	if u.Firstname != "" {
		return u.Firstname
	}
	return u.Username
}
