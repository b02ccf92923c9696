package otp

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/otavioph/otpbank/internal/otp/inbound"
	"github.com/otavioph/otpbank/internal/otp/outbound/db"
	"github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/clock"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goroutine"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/otp"
	"github.com/otavioph/otpbank/internal/pkg/router"
	"github.com/otavioph/otpbank/internal/pkg/uid"
	"github.com/otavioph/otpbank/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	Code       otp.CodeGenerator          `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// Usecase is the engine contract other modules consume. The auth module
// creates and validates login OTPs through it instead of reaching into the
// store directly.
type Usecase interface {
	Create(ctx context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error)
	Validate(ctx context.Context, in usecase.ValidateInput) (*usecase.ValidateOutput, error)
	Status(ctx context.Context, in usecase.StatusInput) (*usecase.StatusOutput, error)
}

func New(ctx context.Context, dep Dependency) (Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbOtp := db.NewDB(dep.DBConn, dep.UID, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbOtp,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Code:       dep.Code,
		OID:        dep.OID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	startRetentionSweep(ctx, dep, uc)

	return uc, nil
}

// startRetentionSweep runs the periodic delete of settled OTP records past
// the retention window.
func startRetentionSweep(ctx context.Context, dep Dependency, uc *usecase.Usecase) {
	interval := dep.Config.GetMinute("modules.otp.sweep_interval_minutes")
	if interval <= 0 {
		interval = time.Hour
	}

	dep.Goroutine.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := uc.Sweep(ctx); err != nil {
					slog.WarnContext(ctx, "otp retention sweep failed", "error", err)
				}
			}
		}
	})
}
