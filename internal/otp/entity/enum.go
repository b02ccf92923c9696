package entity

import "github.com/samber/lo"

// Status is the lifecycle state of an OTP record.
//
// The only valid transitions start from StatusPending. Validated, expired and
// failed are terminal.
type Status int16

const (
	// StatusUnknown is mean status is not known / not set.
	StatusUnknown Status = 0

	// StatusPending mean the OTP was issued and can still be validated.
	StatusPending Status = 1

	// StatusValidated mean the OTP was successfully consumed.
	StatusValidated Status = 2

	// StatusExpired mean the OTP passed its expiry before being validated.
	StatusExpired Status = 3

	// StatusFailed mean the OTP was locked after too many wrong attempts.
	StatusFailed Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusValidated:
		return "validated"
	case StatusExpired:
		return "expired"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Purpose is the reason an OTP was issued.
type Purpose string

const (
	PurposeGeneral      Purpose = "general"
	PurposeVerification Purpose = "verification"
	PurposeLogin        Purpose = "login"
	PurposeReset        Purpose = "reset"
	PurposeRegistration Purpose = "registration"
)

func (p Purpose) String() string {
	return string(p)
}

// IsValid reports whether p is one of the known purposes.
func (p Purpose) IsValid() bool {
	return lo.Contains([]Purpose{
		PurposeGeneral,
		PurposeVerification,
		PurposeLogin,
		PurposeReset,
		PurposeRegistration,
	}, p)
}

// PurposeFromString parses a purpose value, falling back to PurposeGeneral
// for empty input.
func PurposeFromString(raw string) Purpose {
	if raw == "" {
		return PurposeGeneral
	}

	p := Purpose(raw)
	if !p.IsValid() {
		return ""
	}
	return p
}
