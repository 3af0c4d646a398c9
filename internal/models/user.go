package models

import "time"

// User is a member of the hostel community.
type User struct {
	ID            int       `db:"id" json:"id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Username      string    `db:"username" json:"username"`
	PersonalEmail string    `db:"personal_email" json:"personal_email"`
	CollegeEmail  string    `db:"college_email" json:"college_email"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	EmailVerified bool      `db:"email_verified" json:"email_verified"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// LoginEmail is the address used for authentication: college email when set,
// otherwise the personal one.
func (u User) LoginEmail() string {
	if u.CollegeEmail != "" {
		return u.CollegeEmail
	}
	return u.PersonalEmail
}
