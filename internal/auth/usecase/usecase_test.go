package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/otavioph/otpbank/internal/auth/entity"
	"github.com/otavioph/otpbank/internal/auth/outbound/cache"
	otpentity "github.com/otavioph/otpbank/internal/otp/entity"
	otpusecase "github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
	"github.com/otavioph/otpbank/internal/pkg/goroutine"
	"github.com/otavioph/otpbank/internal/pkg/hash"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/jwt"
	"github.com/otavioph/otpbank/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	getByEmail func(ctx context.Context, email string) (*entity.User, error)
	getByID    func(ctx context.Context, id int64) (*entity.User, error)
	create     func(ctx context.Context, in entity.User) (*entity.User, error)
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	return f.getByID(ctx, id)
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, in entity.User) (*entity.User, error) {
	return f.create(ctx, in)
}

type fakeMessaging struct {
	published chan OtpChallengeEvent
}

func (f *fakeMessaging) PublishOtpChallenge(_ context.Context, msg OtpChallengeEvent) error {
	f.published <- msg
	return nil
}

type fakeOtpEngine struct {
	create   func(ctx context.Context, in otpusecase.CreateInput) (*otpusecase.CreateOutput, error)
	validate func(ctx context.Context, in otpusecase.ValidateInput) (*otpusecase.ValidateOutput, error)
}

func (f *fakeOtpEngine) Create(ctx context.Context, in otpusecase.CreateInput) (*otpusecase.CreateOutput, error) {
	return f.create(ctx, in)
}

func (f *fakeOtpEngine) Validate(ctx context.Context, in otpusecase.ValidateInput) (*otpusecase.ValidateOutput, error) {
	return f.validate(ctx, in)
}

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeUUID struct{}

func (fakeUUID) Generate() string { return "test-token-id" }

const authTestConfigYAML = `
modules:
  auth:
    access_ttl: 15m
    validation_url: "http://localhost:8080/api/v1/auth/validate-otp"
`

type testEnv struct {
	uc      *Usecase
	redis   *miniredis.Miniredis
	mq      *fakeMessaging
	routine *goroutine.Manager
	now     time.Time
}

func newTestEnv(t *testing.T, repo *fakeUserRepo, engine *fakeOtpEngine) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(authTestConfigYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	now := time.Now()
	secret := []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	otpJWT, err := jwt.NewHS512(jwt.Config{
		Secret: secret, Issuer: "test", Audiences: []string{"test"},
		TokenType: jwt.TypeOTP, TTL: 5 * time.Minute,
		Clock: fakeClock{now: now}, UUID: fakeUUID{},
	})
	require.NoError(t, err)

	accessJWT, err := jwt.NewHS512(jwt.Config{
		Secret: secret, Issuer: "test", Audiences: []string{"test"},
		TokenType: jwt.TypeAccess, TTL: 15 * time.Minute,
		Clock: fakeClock{now: now}, UUID: fakeUUID{},
	})
	require.NoError(t, err)

	ins := instrument.NewNoop()
	mq := &fakeMessaging{published: make(chan OtpChallengeEvent, 1)}
	routine := goroutine.NewManager(5)

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: mq,
		Session:       cache.NewSession(client, ins),
		Otp:           engine,
		Validator:     v,
		Config:        cfg,
		Bcrypt:        hash.NewBcrypt(4, ""),
		OTPJWT:        otpJWT,
		AccessJWT:     accessJWT,
		Clock:         fakeClock{now: now},
		Instrument:    ins,
		Goroutine:     routine,
	})

	return &testEnv{uc: uc, redis: mr, mq: mq, routine: routine, now: now}
}

func hashedPassword(t *testing.T, plaintext string) string {
	t.Helper()

	h, err := hash.NewBcrypt(4, "").Hash(plaintext)
	require.NoError(t, err)
	return string(h)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	user := func(t *testing.T) *entity.User {
		return &entity.User{
			ID:       42,
			FullName: "Test Person",
			Email:    "user@example.com",
			Password: hashedPassword(t, "s3cret!pass"),
		}
	}

	t.Run("OpensChallenge", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(_ context.Context, email string) (*entity.User, error) {
				assert.Equal(t, "user@example.com", email)
				return user(t), nil
			},
		}
		var env *testEnv
		engine := &fakeOtpEngine{
			create: func(_ context.Context, in otpusecase.CreateInput) (*otpusecase.CreateOutput, error) {
				assert.Equal(t, "login", in.Purpose)
				return &otpusecase.CreateOutput{
					Hash:       "challenge-hash",
					Code:       "482913",
					Identifier: in.Identifier,
					Purpose:    otpentity.PurposeLogin,
					ExpiresAt:  env.now.Add(5 * time.Minute),
				}, nil
			},
		}
		env = newTestEnv(t, repo, engine)

		out, err := env.uc.Login(ctx, LoginInput{Email: "user@example.com", Password: "s3cret!pass"})
		require.NoError(t, err)
		assert.Equal(t, TaskTypeOtpChallenger, out.TaskType)
		assert.NotEmpty(t, out.AccessToken)
		assert.Equal(t, "http://localhost:8080/api/v1/auth/validate-otp", out.ValidationURL)

		// Challenge session bound to user and hash, value is the user id.
		val, err := env.redis.Get("otp_session:42:challenge-hash")
		require.NoError(t, err)
		assert.Equal(t, "42", val)

		// Challenge email event published in the background.
		require.NoError(t, env.routine.Wait())
		evt := <-env.mq.published
		assert.Equal(t, int64(42), evt.UserID)
		assert.Equal(t, "482913", evt.Code)
		assert.Equal(t, "challenge-hash", evt.Hash)
	})

	t.Run("RevokesEarlierSessions", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(context.Context, string) (*entity.User, error) { return user(t), nil },
		}
		var env *testEnv
		engine := &fakeOtpEngine{
			create: func(_ context.Context, in otpusecase.CreateInput) (*otpusecase.CreateOutput, error) {
				return &otpusecase.CreateOutput{
					Hash:      "new-hash",
					Code:      "482913",
					ExpiresAt: env.now.Add(5 * time.Minute),
				}, nil
			},
		}
		env = newTestEnv(t, repo, engine)
		env.redis.Set("otp_session:42:old-hash", "42")

		_, err := env.uc.Login(ctx, LoginInput{Email: "user@example.com", Password: "s3cret!pass"})
		require.NoError(t, err)

		assert.False(t, env.redis.Exists("otp_session:42:old-hash"))
		assert.True(t, env.redis.Exists("otp_session:42:new-hash"))
	})

	t.Run("MixedCaseEmailFindsAccount", func(t *testing.T) {
		// Registration lowercases the email before storing, so login must
		// normalize the same way or the exact-match lookup misses.
		repo := &fakeUserRepo{
			getByEmail: func(_ context.Context, email string) (*entity.User, error) {
				assert.Equal(t, "user@example.com", email)
				return user(t), nil
			},
		}
		var env *testEnv
		engine := &fakeOtpEngine{
			create: func(_ context.Context, in otpusecase.CreateInput) (*otpusecase.CreateOutput, error) {
				assert.Equal(t, "user@example.com", in.Identifier)
				return &otpusecase.CreateOutput{
					Hash:      "challenge-hash",
					Code:      "482913",
					ExpiresAt: env.now.Add(5 * time.Minute),
				}, nil
			},
		}
		env = newTestEnv(t, repo, engine)

		out, err := env.uc.Login(ctx, LoginInput{Email: " User@Example.COM ", Password: "s3cret!pass"})
		require.NoError(t, err)
		assert.Equal(t, TaskTypeOtpChallenger, out.TaskType)
		require.NoError(t, env.routine.Wait())
		<-env.mq.published
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(context.Context, string) (*entity.User, error) {
				return nil, goerror.ErrNotFound
			},
		}
		env := newTestEnv(t, repo, &fakeOtpEngine{})

		_, err := env.uc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
		assert.Contains(t, err.Error(), "invalid email or password")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(context.Context, string) (*entity.User, error) { return user(t), nil },
		}
		env := newTestEnv(t, repo, &fakeOtpEngine{})

		_, err := env.uc.Login(ctx, LoginInput{Email: "user@example.com", Password: "wrong-pass"})
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
		assert.Contains(t, err.Error(), "invalid email or password")
	})

	t.Run("ChallengeConflictPropagates", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(context.Context, string) (*entity.User, error) { return user(t), nil },
		}
		engine := &fakeOtpEngine{
			create: func(context.Context, otpusecase.CreateInput) (*otpusecase.CreateOutput, error) {
				return nil, goerror.NewBusiness("an active OTP already exists for this identifier", goerror.CodeConflict)
			},
		}
		env := newTestEnv(t, repo, engine)

		_, err := env.uc.Login(ctx, LoginInput{Email: "user@example.com", Password: "s3cret!pass"})
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeConflict, gerr.Code())
	})
}

func TestValidateOTP(t *testing.T) {
	claims := jwt.Claims{UserID: 42, UserEmail: "user@example.com", Hash: "challenge-hash", TokenType: jwt.TypeOTP}
	ctx := jwt.SetAuth(context.Background(), claims)

	t.Run("IssuesAccessToken", func(t *testing.T) {
		engine := &fakeOtpEngine{
			validate: func(_ context.Context, in otpusecase.ValidateInput) (*otpusecase.ValidateOutput, error) {
				assert.Equal(t, "challenge-hash", in.Hash)
				assert.Equal(t, "482913", in.Code)
				return &otpusecase.ValidateOutput{}, nil
			},
		}
		env := newTestEnv(t, &fakeUserRepo{}, engine)
		env.redis.Set("otp_session:42:challenge-hash", "42")

		out, err := env.uc.ValidateOTP(ctx, ValidateOTPInput{OtpCode: "482913"})
		require.NoError(t, err)
		assert.NotEmpty(t, out.AccessToken)

		// Session entry rewritten for the access scope with the same key.
		val, err := env.redis.Get("otp_session:42:challenge-hash")
		require.NoError(t, err)
		assert.Equal(t, "42", val)
	})

	t.Run("MissingSessionRejected", func(t *testing.T) {
		env := newTestEnv(t, &fakeUserRepo{}, &fakeOtpEngine{})

		_, err := env.uc.ValidateOTP(ctx, ValidateOTPInput{OtpCode: "482913"})
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
	})

	t.Run("EngineFailurePropagatesVerbatim", func(t *testing.T) {
		engineErr := goerror.NewBusiness("invalid OTP code", goerror.CodeUnauthorized)
		engine := &fakeOtpEngine{
			validate: func(context.Context, otpusecase.ValidateInput) (*otpusecase.ValidateOutput, error) {
				return nil, engineErr
			},
		}
		env := newTestEnv(t, &fakeUserRepo{}, engine)
		env.redis.Set("otp_session:42:challenge-hash", "42")

		_, err := env.uc.ValidateOTP(ctx, ValidateOTPInput{OtpCode: "000000"})
		assert.Equal(t, engineErr, err)
	})

	t.Run("NoClaimsRejected", func(t *testing.T) {
		env := newTestEnv(t, &fakeUserRepo{}, &fakeOtpEngine{})

		_, err := env.uc.ValidateOTP(context.Background(), ValidateOTPInput{OtpCode: "482913"})
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(context.Context, string) (*entity.User, error) {
				return nil, goerror.ErrNotFound
			},
			create: func(_ context.Context, in entity.User) (*entity.User, error) {
				assert.Equal(t, "new@example.com", in.Email)
				assert.NotEqual(t, "s3cret!pass", in.Password)
				return &in, nil
			},
		}
		env := newTestEnv(t, repo, &fakeOtpEngine{})

		err := env.uc.Register(ctx, RegisterInput{
			Email:    "New@Example.com",
			Password: "s3cret!pass",
			FullName: "Test Person",
		})
		require.NoError(t, err)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByEmail: func(context.Context, string) (*entity.User, error) {
				return &entity.User{ID: 1}, nil
			},
		}
		env := newTestEnv(t, repo, &fakeOtpEngine{})

		err := env.uc.Register(ctx, RegisterInput{
			Email:    "new@example.com",
			Password: "s3cret!pass",
			FullName: "Test Person",
		})
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeConflict, gerr.Code())
	})
}

func TestProfile(t *testing.T) {
	claims := jwt.Claims{UserID: 42, UserEmail: "user@example.com", Hash: "challenge-hash", TokenType: jwt.TypeAccess}
	ctx := jwt.SetAuth(context.Background(), claims)

	t.Run("ReturnsAccount", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByID: func(_ context.Context, id int64) (*entity.User, error) {
				assert.Equal(t, int64(42), id)
				return &entity.User{ID: 42, FullName: "Test Person", Email: "user@example.com"}, nil
			},
		}
		env := newTestEnv(t, repo, &fakeOtpEngine{})

		out, err := env.uc.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), out.ID)
		assert.Equal(t, "Test Person", out.FullName)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := &fakeUserRepo{
			getByID: func(context.Context, int64) (*entity.User, error) {
				return nil, goerror.ErrNotFound
			},
		}
		env := newTestEnv(t, repo, &fakeOtpEngine{})

		_, err := env.uc.Profile(ctx)
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeNotFound, gerr.Code())
	})
}
