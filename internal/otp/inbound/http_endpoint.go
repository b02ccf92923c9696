package inbound

import (
	"github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP lifecycle.
type HTTPEndpoint struct {
	uc uc
}

// Create issues a new OTP for an identifier.
//
// The raw code is returned only here; it can never be read back from any
// other endpoint. The caller is responsible for delivering it out-of-band.
func (h *HTTPEndpoint) Create(r *router.Request) (any, error) {
	var req CreateOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Create(r.Context(), usecase.CreateInput{
		Identifier: req.Identifier,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return nil, err
	}

	return CreateOtpResponse{
		Hash:       resp.Hash,
		Code:       resp.Code,
		Identifier: resp.Identifier,
		Purpose:    resp.Purpose.String(),
		ExpiresAt:  resp.ExpiresAt,
	}, nil
}

// Validate consumes an OTP by hash and code.
func (h *HTTPEndpoint) Validate(r *router.Request) (any, error) {
	var req ValidateOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.Validate(r.Context(), usecase.ValidateInput{
		Hash: req.Hash,
		Code: req.Code,
	}); err != nil {
		return nil, err
	}

	return ValidateOtpResponse{}, nil
}

// Status reports the state of an OTP. Unknown hashes answer 200 with a
// not-found sentinel so the endpoint never confirms whether a hash existed.
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	resp, err := h.uc.Status(r.Context(), usecase.StatusInput{
		Hash: r.GetParam("hash"),
	})
	if err != nil {
		return nil, err
	}

	if !resp.Found {
		return StatusOtpResponse{Found: false, Status: "not_found"}, nil
	}

	return StatusOtpResponse{
		Found:     true,
		Status:    resp.Status.String(),
		ExpiresAt: &resp.ExpiresAt,
	}, nil
}
