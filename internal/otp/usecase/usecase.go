package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/otavioph/otpbank/internal/otp/entity"
	"github.com/otavioph/otpbank/internal/pkg/clock"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/otp"
	"github.com/otavioph/otpbank/internal/pkg/uid"
	"github.com/otavioph/otpbank/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateOtp(ctx context.Context, in entity.Otp) (int64, error)
	GetOtpByHash(ctx context.Context, hash string) (*entity.Otp, error)
	GetActiveOtpByIdentifier(ctx context.Context, identifier string) (*entity.Otp, error)
	UpdateOtpStatus(ctx context.Context, id int64, status entity.Status) error
	IncrementOtpAttempts(ctx context.Context, id int64) error
	ExpireOldOtps(ctx context.Context, identifier string, purpose entity.Purpose) error
	DeleteExpiredOtps(ctx context.Context, olderThan time.Time) (int64, error)
}

type Usecase struct {
	repoDB    repoDB
	validator validator.Validator
	cfg       config.Config
	code      otp.CodeGenerator
	oid       uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	outcomes  metric.Int64Counter
}

type Dependency struct {
	RepoDB     repoDB
	Validator  validator.Validator
	Config     config.Config
	Code       otp.CodeGenerator
	OID        uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	outcomes, err := dep.Instrument.Meter("otp.usecase").
		Int64Counter("otp.validation.outcomes", metric.WithDescription("OTP validation results by outcome"))
	if err != nil {
		slog.Error("failed to create otp validation outcome counter", "error", err)
	}

	return &Usecase{
		repoDB:    dep.RepoDB,
		validator: dep.Validator,
		cfg:       dep.Config,
		code:      dep.Code,
		oid:       dep.OID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		outcomes:  outcomes,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) countOutcome(ctx context.Context, outcome string) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// ChallengeTTL returns the configured OTP lifetime clamped to [1, 10]
// minutes. The challenge token signer uses the same value, so a token can
// never outlive the code it unlocks.
func ChallengeTTL(cfg config.Config) time.Duration {
	minutes := cfg.GetInt64("modules.otp.ttl_minutes")
	if minutes < 1 {
		minutes = 1
	}
	if minutes > 10 {
		minutes = 10
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Usecase) ttl() time.Duration {
	return ChallengeTTL(s.cfg)
}

// maxAttempts returns the configured attempt budget clamped to [1, 10].
func (s *Usecase) maxAttempts() int32 {
	max := s.cfg.GetInt32("modules.otp.max_attempts")
	if max < 1 {
		max = 1
	}
	if max > 10 {
		max = 10
	}
	return max
}
