package entity

import "time"

// Otp is one one-time-password challenge record.
//
// ID is assigned by the store on insert. Hash is the opaque public handle
// clients use to reference the challenge; the numeric code itself never
// appears in a URL or a token.
type Otp struct {
	ID          int64
	Hash        string
	Code        string
	Identifier  string
	Purpose     Purpose
	Status      Status
	Attempts    int32
	ExpiresAt   time.Time
	ValidatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active reports whether the record still blocks creation of a new OTP for
// the same identifier: not yet validated and not past its expiry.
func (o Otp) Active(now time.Time) bool {
	return o.Status != StatusValidated && o.ExpiresAt.After(now)
}

// Expired reports whether the record is past its expiry at the given time.
func (o Otp) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
