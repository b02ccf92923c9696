package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/otavioph/otpbank/internal/auth/inbound"
	"github.com/otavioph/otpbank/internal/auth/outbound/cache"
	"github.com/otavioph/otpbank/internal/auth/outbound/db"
	"github.com/otavioph/otpbank/internal/auth/outbound/mq"
	"github.com/otavioph/otpbank/internal/auth/usecase"
	"github.com/otavioph/otpbank/internal/otp"
	"github.com/otavioph/otpbank/internal/pkg/clock"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goroutine"
	"github.com/otavioph/otpbank/internal/pkg/hash"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/jwt"
	"github.com/otavioph/otpbank/internal/pkg/messaging"
	"github.com/otavioph/otpbank/internal/pkg/router"
	"github.com/otavioph/otpbank/internal/pkg/uid"
	"github.com/otavioph/otpbank/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Session    *cache.Session             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Otp        otp.Usecase                `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	OTPJWT     jwt.JWT                    `validate:"required"`
	AccessJWT  jwt.JWT                    `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(_ context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbUser := db.NewDB(dep.DBConn, dep.UID, dep.Instrument)
	mqAuth := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbUser,
		RepoMessaging: mqAuth,
		Session:       dep.Session,
		Otp:           dep.Otp,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		OTPJWT:        dep.OTPJWT,
		AccessJWT:     dep.AccessJWT,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
