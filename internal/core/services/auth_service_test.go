package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/config"
)

// fakeUserRepo is an in-memory UserRepository stub
type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uint(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// fakeRefreshTokenRepo is an in-memory RefreshTokenRepository stub
type fakeRefreshTokenRepo struct {
	tokens []*models.RefreshToken
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	token.ID = uint(len(r.tokens) + 1)
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(ctx context.Context, id uint) error {
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newTestAuthService(farmers ...*models.Farmer) (*AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, &fakeRefreshTokenRepo{}, newFakeFarmerRepo(farmers...), testConfig())
	return svc, userRepo
}

func TestAuthServiceRegister(t *testing.T) {
	agentInput := func() *RegisterInput {
		return &RegisterInput{
			Name:     "Achieng Were",
			Email:    "achieng@example.com",
			Phone:    "+254733000111",
			Password: "strongpassword",
			Role:     "agent",
		}
	}

	t.Run("registers an agent", func(t *testing.T) {
		svc, userRepo := newTestAuthService()

		result, err := svc.Register(context.Background(), agentInput())
		require.NoError(t, err)

		assert.Equal(t, "agent", result.User.Role)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		require.Len(t, userRepo.users, 1)
		assert.NotEqual(t, "strongpassword", userRepo.users[1].Password, "password must be stored hashed")
	})

	t.Run("farmer registration requires a matching farmer record", func(t *testing.T) {
		svc, _ := newTestAuthService()

		input := agentInput()
		input.Role = "farmer"
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrFarmerNotRegistered)
	})

	t.Run("farmer registration succeeds when phone and national ID are on record", func(t *testing.T) {
		farmer := &models.Farmer{ID: 1, Name: "Wanjiku Kamau", Phone: "+254733000111", NationalID: "12345678"}
		svc, _ := newTestAuthService(farmer)

		input := agentInput()
		input.Role = "farmer"
		input.NationalID = "12345678"
		result, err := svc.Register(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "farmer", result.User.Role)
	})

	t.Run("farmer registration fails on a national ID mismatch", func(t *testing.T) {
		farmer := &models.Farmer{ID: 1, Name: "Wanjiku Kamau", Phone: "+254733000111", NationalID: "12345678"}
		svc, _ := newTestAuthService(farmer)

		input := agentInput()
		input.Role = "farmer"
		input.NationalID = "99999999"
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrFarmerNotRegistered)
	})

	t.Run("admin self-registration is refused", func(t *testing.T) {
		svc, _ := newTestAuthService()

		input := agentInput()
		input.Role = "admin"
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("weak passwords are refused", func(t *testing.T) {
		svc, _ := newTestAuthService()

		input := agentInput()
		input.Password = "short"
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("duplicate email is refused", func(t *testing.T) {
		svc, _ := newTestAuthService()

		_, err := svc.Register(context.Background(), agentInput())
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), agentInput())
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	svc, userRepo := newTestAuthService()

	_, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Achieng Were",
		Email:    "achieng@example.com",
		Password: "strongpassword",
		Role:     "agent",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(context.Background(), &LoginInput{
			Email:    "achieng@example.com",
			Password: "strongpassword",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginInput{
			Email:    "achieng@example.com",
			Password: "wrongpassword",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginInput{
			Email:    "nobody@example.com",
			Password: "strongpassword",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		userRepo.users[1].IsActive = false
		defer func() { userRepo.users[1].IsActive = true }()

		_, err := svc.Login(context.Background(), &LoginInput{
			Email:    "achieng@example.com",
			Password: "strongpassword",
		})
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	svc, _ := newTestAuthService()

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Achieng Were",
		Email:    "achieng@example.com",
		Password: "strongpassword",
		Role:     "agent",
	})
	require.NoError(t, err)

	t.Run("rotates the refresh token", func(t *testing.T) {
		result, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEqual(t, registered.RefreshToken, result.RefreshToken)
	})

	t.Run("garbage token is invalid", func(t *testing.T) {
		_, err := svc.RefreshToken(context.Background(), strings.Repeat("x", 64))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
