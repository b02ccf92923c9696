package inbound

import (
	"net/http"
	"time"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type RegisterResponse struct{}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

func (RegisterResponse) Message() string {
	return "Registration successful"
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Msg           string `json:"-"`
	TaskType      string `json:"taskType"`
	AccessToken   string `json:"accessToken"`
	ValidationURL string `json:"validationUrl"`
}

// StatusCode reports 202: credentials were accepted but the login stays
// pending until the second factor is validated.
func (LoginResponse) StatusCode() int {
	return http.StatusAccepted
}

func (l LoginResponse) Message() string {
	return l.Msg
}

func (l LoginResponse) Headers() map[string]string {
	return map[string]string{"X-Auth-Task": l.TaskType}
}

type ValidateOTPRequest struct {
	OtpCode string `json:"otpCode"`
}

type ValidateOTPResponse struct {
	AccessToken string `json:"accessToken"`
}

func (ValidateOTPResponse) Message() string {
	return "OTP validated, login complete"
}

type ProfileResponse struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
