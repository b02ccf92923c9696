package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	authcache "github.com/otavioph/otpbank/internal/auth/outbound/cache"
	"github.com/otavioph/otpbank/internal/pkg/clock"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goroutine"
	"github.com/otavioph/otpbank/internal/pkg/hash"
	"github.com/otavioph/otpbank/internal/pkg/idempotency"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/jwt"
	"github.com/otavioph/otpbank/internal/pkg/mail"
	"github.com/otavioph/otpbank/internal/pkg/messaging"
	"github.com/otavioph/otpbank/internal/pkg/otp"
	"github.com/otavioph/otpbank/internal/pkg/router"
	"github.com/otavioph/otpbank/internal/pkg/uid"
	"github.com/otavioph/otpbank/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	bcrypt    hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	code      otp.CodeGenerator
	otpJWT    jwt.JWT
	accessJWT jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	session   *authcache.Session
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
