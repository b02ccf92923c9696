package entity

import "time"

// User is an account that can log in and complete OTP challenges.
type User struct {
	ID        int64
	FullName  string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
