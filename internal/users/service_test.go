package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jtrevino/storefront-backend/internal/cart"
	"github.com/jtrevino/storefront-backend/pkg/auth"
	"github.com/jtrevino/storefront-backend/pkg/auth/session"
	"github.com/jtrevino/storefront-backend/pkg/config"
	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

type fakeSessions struct {
	live map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{live: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + uuid.NewString()
	f.live[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.live[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.live, oldAccessID)
	newID := uuid.NewString()
	token := "refresh-" + uuid.NewString()
	f.live[newID] = token
	return newID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.live, accessID)
	return nil
}

type memCartStore struct {
	carts map[string]cart.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: map[string]cart.Cart{}}
}

func (s *memCartStore) Load(_ context.Context, sessionID string) (cart.Cart, error) {
	if c, ok := s.carts[sessionID]; ok {
		return c.Clone(), nil
	}
	return cart.New(), nil
}

func (s *memCartStore) Save(_ context.Context, sessionID string, c cart.Cart) error {
	s.carts[sessionID] = c.Clone()
	return nil
}

func (s *memCartStore) Clear(_ context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "storefront-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

// Minimal argon params keep hashing fast under test.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T, db *gorm.DB, sessions sessionManager, carts cartStore) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), sessions, carts, testJWTConfig(), testPasswordConfig())
	require.NoError(t, err)
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, newFakeSessions(), newMemCartStore())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Ana@Example.com",
		Username: "ana",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email, "email must be normalized")
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEmpty(t, result.SessionID)

	claims, err := auth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, result.SessionID, claims.ID, "jti must match the session id")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, newFakeSessions(), newMemCartStore())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Username: "ana", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Username: "ana2", Password: "correct horse",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, newFakeSessions(), newMemCartStore())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Username: "ana", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{
		Email: "ana@example.com", Password: "wrong horse",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, newFakeSessions(), newMemCartStore())

	_, err := svc.Login(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "whatever1",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLoginMergesGuestCart(t *testing.T) {
	db := newTestDB(t)
	carts := newMemCartStore()
	svc := newTestService(t, db, newFakeSessions(), carts)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Username: "ana", Password: "correct horse",
	})
	require.NoError(t, err)

	guestID := uuid.NewString()
	guestCart := cart.New()
	guestCart.Add(uuid.NewString(), 2)
	require.NoError(t, carts.Save(context.Background(), guestID, guestCart))

	result, err := svc.Login(context.Background(), LoginInput{
		Email:          "ana@example.com",
		Password:       "correct horse",
		GuestSessionID: guestID,
	})
	require.NoError(t, err)

	merged, err := carts.Load(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.False(t, merged.IsEmpty(), "guest cart must follow login")

	orphan, err := carts.Load(context.Background(), guestID)
	require.NoError(t, err)
	assert.True(t, orphan.IsEmpty(), "guest cart must be cleared after merge")
}

func TestRefreshRotatesSessionAndMovesCart(t *testing.T) {
	db := newTestDB(t)
	carts := newMemCartStore()
	sessions := newFakeSessions()
	svc := newTestService(t, db, sessions, carts)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Username: "ana", Password: "correct horse",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), LoginInput{
		Email: "ana@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	productID := uuid.NewString()
	c := cart.New()
	c.Add(productID, 1)
	require.NoError(t, carts.Save(context.Background(), login.SessionID, c))

	claims, err := auth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), claims, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.SessionID, refreshed.SessionID)

	moved, err := carts.Load(context.Background(), refreshed.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Quantity(productID), "cart must follow session rotation")

	// The old refresh token is dead after rotation.
	_, err = svc.Refresh(context.Background(), claims, login.RefreshToken)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	db := newTestDB(t)
	sessions := newFakeSessions()
	svc := newTestService(t, db, sessions, newMemCartStore())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Username: "ana", Password: "correct horse",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), LoginInput{
		Email: "ana@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.SessionID))
	_, stillLive := sessions.live[login.SessionID]
	assert.False(t, stillLive)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, newFakeSessions(), newMemCartStore())

	cases := []RegisterInput{
		{Email: "", Username: "ana", Password: "correct horse"},
		{Email: "ana@example.com", Username: "", Password: "correct horse"},
		{Email: "ana@example.com", Username: "ana", Password: "short"},
	}
	for _, input := range cases {
		_, err := svc.Register(context.Background(), input)
		require.Error(t, err)
		coded := pkgerrors.As(err)
		require.NotNil(t, coded)
		assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	}
}
