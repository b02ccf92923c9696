package inbound

import (
	"net/http"
	"time"
)

type CreateOtpRequest struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
}

type CreateOtpResponse struct {
	Hash       string    `json:"hash"`
	Code       string    `json:"code"`
	Identifier string    `json:"identifier"`
	Purpose    string    `json:"purpose"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (CreateOtpResponse) StatusCode() int {
	return http.StatusCreated
}

func (CreateOtpResponse) Message() string {
	return "OTP created"
}

type ValidateOtpRequest struct {
	Hash string `json:"hash"`
	Code string `json:"code"`
}

type ValidateOtpResponse struct{}

func (ValidateOtpResponse) Message() string {
	return "OTP validated"
}

type StatusOtpResponse struct {
	Found     bool       `json:"found"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
