// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// ExternalCredential is stored in place of a password hash for accounts that
// were provisioned by an external identity provider. It is not a valid bcrypt
// hash, so no password can ever match it.
const ExternalCredential = "GOOGLE_OAUTH_USER"

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user. It is never reused.
	ID uint `gorm:"primaryKey"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users and is compared case-sensitively.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// HashedPassword is the bcrypt hash of the user's password, or
	// ExternalCredential for externally authenticated accounts.
	HashedPassword string `gorm:"column:hashed_password;size:255;not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsExternal reports whether the user can only sign in through the external
// identity provider.
func (u *User) IsExternal() bool {
	return u.HashedPassword == ExternalCredential
}
