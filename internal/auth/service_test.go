package auth

import (
	"context"
	"testing"
	"time"

	"courtly/internal/shared/config"
	"courtly/internal/users"
	"courtly/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byID       map[string]*users.User
	byUsername map[string]*users.User
	emails     map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       make(map[string]*users.User),
		byUsername: make(map[string]*users.User),
		emails:     make(map[string]bool),
	}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	f.byID[user.ID.String()] = user
	f.byUsername[user.Username] = user
	f.emails[user.Email] = true
	return nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error {
	user, ok := f.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, ok := f.byUsername[username]
	return ok, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emails[email], nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func registerReq() *RegisterRequest {
	return &RegisterRequest{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Baseline",
		Email:     "alice@courtly.local",
		Password:  "password123",
		Accept:    true,
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	granted := make(map[uuid.UUID]int)
	svc := NewService(repo, testConfig(), logger.New(), func(ctx context.Context, user users.User) error {
		granted[user.ID]++
		return nil
	})

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.User.Username)
	// Self registration always yields a player, whatever the caller hoped.
	assert.Equal(t, string(users.RolePlayer), resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	stored, err := repo.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, granted[stored.ID])
	assert.NotEqual(t, "password123", stored.Password, "password must be stored hashed")
}

func TestRegisterRequiresTerms(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testConfig(), logger.New(), nil)
	req := registerReq()
	req.Accept = false

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrTermsNotAccepted)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig(), logger.New(), nil)

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// Same email under a different username is still a duplicate.
	req := registerReq()
	req.Username = "alice2"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterSurvivesGrantFailure(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig(), logger.New(), func(ctx context.Context, user users.User) error {
		return assert.AnError
	})

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err, "a failed coin grant must not orphan the account")
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig(), logger.New(), nil)

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)

	_, err = svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig(), logger.New(), nil)

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "courtly", claims.Issuer)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with another secret fails validation.
	other := NewService(repo, &config.Config{JWT: config.JWTConfig{
		Secret:           "different",
		JWTExpiresIn:     time.Minute,
		RefreshExpiresIn: time.Hour,
	}}, logger.New(), nil)
	_, err = other.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig(), logger.New(), nil)

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	pair, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// An access token is not accepted on the refresh path.
	_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig(), logger.New(), nil)

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "newpassword"})
	assert.NoError(t, err)
}
