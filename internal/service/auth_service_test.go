package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service/servicetest"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

func newTestService(repo repository.UserRepository) *AuthService {
	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}
	return NewAuthService(cfg, repo, zap.NewNop())
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(servicetest.NewUserRepo())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@x.com", "Secr3t!")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotEqual(t, "Secr3t!", user.PasswordHash)

	token, err := svc.Login(ctx, "alice", "Secr3t!")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Authenticate(token)
	require.NoError(t, err)
	require.Equal(t, "alice", identity.Username)
	require.Equal(t, user.ID, identity.UserID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc := newTestService(servicetest.NewUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "Secr3t!")
	require.NoError(t, err)

	// Same username, different email.
	_, err = svc.Register(ctx, "alice", "other@x.com", "Secr3t!")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(servicetest.NewUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "Secr3t!")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "alice@x.com", "Hunter2!")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

// racingRepo reports no existing user but fails the insert with ErrDuplicate,
// as happens when two registrations race past the pre-check.
type racingRepo struct {
	*servicetest.UserRepo
}

func (r *racingRepo) FindByUsernameOrEmail(context.Context, string, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *racingRepo) Create(context.Context, string, string, string) (*domain.User, error) {
	return nil, repository.ErrDuplicate
}

func TestRegister_ConstraintRaceStillConflict(t *testing.T) {
	t.Parallel()

	svc := newTestService(&racingRepo{UserRepo: servicetest.NewUserRepo()})

	_, err := svc.Register(context.Background(), "alice", "alice@x.com", "Secr3t!")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLogin_WrongPasswordMatchesUnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(servicetest.NewUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "Secr3t!")
	require.NoError(t, err)

	_, errWrongPassword := svc.Login(ctx, "alice", "wrong")
	_, errUnknownUser := svc.Login(ctx, "nobody", "Secr3t!")

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownUser)
	// Enumeration resistance: both failures are indistinguishable.
	require.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
	require.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(errWrongPassword).Code)
	require.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(errUnknownUser).Code)
}

func TestLogin_MalformedStoredHashIsAuthFailure(t *testing.T) {
	t.Parallel()

	repo := servicetest.NewUserRepo()
	repo.Seed(&domain.User{
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "not-a-bcrypt-hash",
	})
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "alice", "anything")
	require.Error(t, err)
	require.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(err).Code)
}

func TestRegister_StoreUnavailable(t *testing.T) {
	t.Parallel()

	repo := servicetest.NewUserRepo()
	repo.FailWith(errors.New("connection refused"))
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "alice", "alice@x.com", "Secr3t!")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "STORE_UNAVAILABLE", domainErr.Code)
	require.Equal(t, 500, domainErr.HTTPStatus)
}

func TestLogin_StoreUnavailable(t *testing.T) {
	t.Parallel()

	repo := servicetest.NewUserRepo()
	repo.FailWith(errors.New("connection refused"))
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "alice", "Secr3t!")
	require.Error(t, err)
	require.Equal(t, "STORE_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}

func TestAuthenticate_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(servicetest.NewUserRepo())
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tm := svc.TokenManager().WithClock(func() time.Time { return issuedAt })
	token, _, err := tm.Issue(1, "alice")
	require.NoError(t, err)

	tm.WithClock(func() time.Time { return issuedAt.Add(time.Hour + time.Second) })

	_, err = svc.Authenticate(token)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)
	require.Equal(t, "token expired", domainErr.Message)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(servicetest.NewUserRepo())

	_, err := svc.Authenticate("not.a.token")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)
	require.Equal(t, "invalid token", domainErr.Message)
}
