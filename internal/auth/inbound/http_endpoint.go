package inbound

import (
	"github.com/otavioph/otpbank/internal/auth/usecase"
	"github.com/otavioph/otpbank/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration and the two-step login.
type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}); err != nil {
		return nil, err
	}

	return RegisterResponse{}, nil
}

// Login answers with an OTP-scoped token and the pending task, never a full
// session. The task type is mirrored into a response header for clients that
// route on headers instead of the body.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Msg:           resp.Message,
		TaskType:      resp.TaskType,
		AccessToken:   resp.AccessToken,
		ValidationURL: resp.ValidationURL,
	}, nil
}

func (h *HTTPEndpoint) ValidateOTP(r *router.Request) (any, error) {
	var req ValidateOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ValidateOTP(r.Context(), usecase.ValidateOTPInput{
		OtpCode: req.OtpCode,
	})
	if err != nil {
		return nil, err
	}

	return ValidateOTPResponse{AccessToken: resp.AccessToken}, nil
}

func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:        resp.ID,
		FullName:  resp.FullName,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}
