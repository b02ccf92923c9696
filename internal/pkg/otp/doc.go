// Package otp generates the short numeric codes delivered to users during
// one-time-password challenges.
//
// Codes are drawn from crypto/rand and never start with a zero, so a code of
// length n is always an n-digit number when rendered.
package otp
