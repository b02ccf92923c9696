package app

import (
	"log/slog"
	"os"

	"github.com/otavioph/otpbank/internal/auth"
	"github.com/otavioph/otpbank/internal/notification"
	"github.com/otavioph/otpbank/internal/otp"
)

func (a *App) initModules() {
	var otpUsecase otp.Usecase

	if a.config.GetBool("modules.otp.enabled") {
		uc, err := otp.New(a.ctx, otp.Dependency{
			DBConn:     a.dbConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			OID:        a.oid,
			Code:       a.code,
			Clock:      a.clock,
			Validator:  a.validator,
		})
		if err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
		otpUsecase = uc
	}

	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(a.ctx, auth.Dependency{
			DBConn:     a.dbConn,
			Session:    a.session,
			Messaging:  a.messaging,
			Otp:        otpUsecase,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			Bcrypt:     a.bcrypt,
			OTPJWT:     a.otpJWT,
			AccessJWT:  a.accessJWT,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Mail:        a.mail,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
