// Package models defines data records exchanged between the JayCloud client
// and the backend.
package models

// User is the identity record returned by sign-in, account creation,
// profile update, and token renewal.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// FullName returns "First Last" for display purposes.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}

// NewAccount carries the fields required to register a user.
type NewAccount struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ProfileUpdate carries the mutable profile fields. Empty fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}
