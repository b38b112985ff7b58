package models

import "time"

// User is the server-side account record. Accounts are provisioned lazily:
// the first authenticated request from an unknown identity-provider subject
// creates the row.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// SubjectID is the identity provider's stable subject identifier
	// ("sub" claim of the access token).
	SubjectID string `json:"subject_id"`

	// Email is the address the user signed up with.
	Email string `json:"email"`

	// CreatedAt is the timestamp when the account row was first provisioned.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
