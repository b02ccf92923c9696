package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/otavioph/otpbank/internal/auth/usecase"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/jwt"
	"github.com/otavioph/otpbank/internal/pkg/router"
	"github.com/otavioph/otpbank/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsecase struct {
	login    func(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	register func(ctx context.Context, in usecase.RegisterInput) error
}

func (f *fakeUsecase) Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error) {
	return f.login(ctx, in)
}

func (f *fakeUsecase) ValidateOTP(context.Context, usecase.ValidateOTPInput) (*usecase.ValidateOTPOutput, error) {
	return nil, nil
}

func (f *fakeUsecase) Register(ctx context.Context, in usecase.RegisterInput) error {
	return f.register(ctx, in)
}

func (f *fakeUsecase) Profile(context.Context) (*usecase.ProfileOutput, error) {
	return nil, nil
}

type staticJWT struct{}

func (staticJWT) Generate(int64, string, string) (string, error) { return "", nil }

func (staticJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, jwt.ErrInvalidToken }

func newTestRouter(t *testing.T, uc *fakeUsecase) *router.Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	require.NoError(t, err)

	ro := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		OTPJWT:     staticJWT{},
		AccessJWT:  staticJWT{},
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(ro, uc)
	return ro
}

func TestLoginEndpoint(t *testing.T) {
	uc := &fakeUsecase{
		login: func(_ context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error) {
			assert.Equal(t, "user@example.com", in.Email)
			return &usecase.LoginOutput{
				Message:       "OTP sent to your email",
				TaskType:      usecase.TaskTypeOtpChallenger,
				AccessToken:   "otp-scoped-token",
				ValidationURL: "http://localhost:8080/api/v1/auth/validate-otp",
			}, nil
		},
	}
	ro := newTestRouter(t, uc)

	body := `{"email":"user@example.com","password":"s3cret!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	ro.ServeHTTP(rec, req)

	// Credentials were accepted but the login is still pending the second
	// factor, so the response is 202, not 200.
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, usecase.TaskTypeOtpChallenger, rec.Header().Get("X-Auth-Task"))

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			TaskType      string `json:"taskType"`
			AccessToken   string `json:"accessToken"`
			ValidationURL string `json:"validationUrl"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OTP sent to your email", resp.Message)
	assert.Equal(t, usecase.TaskTypeOtpChallenger, resp.Data.TaskType)
	assert.Equal(t, "otp-scoped-token", resp.Data.AccessToken)
}

func TestRegisterEndpoint(t *testing.T) {
	uc := &fakeUsecase{
		register: func(_ context.Context, in usecase.RegisterInput) error {
			assert.Equal(t, "user@example.com", in.Email)
			return nil
		},
	}
	ro := newTestRouter(t, uc)

	body := `{"email":"user@example.com","password":"s3cret!pass","full_name":"Test Person"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	ro.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}
