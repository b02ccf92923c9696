package usecase

import (
	"context"
	"time"

	"github.com/otavioph/otpbank/internal/auth/entity"
	otpusecase "github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/clock"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goroutine"
	"github.com/otavioph/otpbank/internal/pkg/hash"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/jwt"
	"github.com/otavioph/otpbank/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// OtpChallengeEvent carries everything the notification pipeline needs to
// deliver the passcode email.
type OtpChallengeEvent struct {
	UserID    int64
	Email     string
	FullName  string
	Code      string
	Hash      string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishOtpChallenge(ctx context.Context, msg OtpChallengeEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, in entity.User) (*entity.User, error)
}

// otpEngine is the slice of the OTP module the auth flows depend on.
type otpEngine interface {
	Create(ctx context.Context, in otpusecase.CreateInput) (*otpusecase.CreateOutput, error)
	Validate(ctx context.Context, in otpusecase.ValidateInput) (*otpusecase.ValidateOutput, error)
}

// sessionCache is the challenge/access session store keyed by user and OTP
// hash. Entries double as the revocation source of truth for access tokens.
type sessionCache interface {
	Set(ctx context.Context, subjectID int64, hash string, ttl time.Duration) error
	Get(ctx context.Context, subjectID int64, hash string) (string, error)
	Delete(ctx context.Context, subjectID int64, hash string) error
	Invalidate(ctx context.Context, subjectID int64) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	session       sessionCache
	otp           otpEngine
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	otpJWT        jwt.JWT
	accessJWT     jwt.JWT
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Session       sessionCache
	Otp           otpEngine
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	OTPJWT        jwt.JWT
	AccessJWT     jwt.JWT
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		session:       dep.Session,
		otp:           dep.Otp,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		otpJWT:        dep.OTPJWT,
		accessJWT:     dep.AccessJWT,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}
