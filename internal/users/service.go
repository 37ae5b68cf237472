package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/internal/cart"
	"github.com/jtrevino/storefront-backend/pkg/auth"
	"github.com/jtrevino/storefront-backend/pkg/auth/session"
	"github.com/jtrevino/storefront-backend/pkg/config"
	"github.com/jtrevino/storefront-backend/pkg/db"
	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
	"github.com/jtrevino/storefront-backend/pkg/security"
)

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type cartStore interface {
	Load(ctx context.Context, sessionID string) (cart.Cart, error)
	Save(ctx context.Context, sessionID string, c cart.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput is the credential payload. GuestSessionID, when present, names
// an anonymous cart to merge into the authenticated session.
type LoginInput struct {
	Email          string
	Password       string
	GuestSessionID string
}

// AuthResult bundles the user with a freshly minted token pair. SessionID is
// the JWT jti and doubles as the cart session key.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	SessionID    string
}

// Service exposes account lifecycle and token operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, claims *auth.AccessTokenClaims, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type service struct {
	repo     *Repository
	sessions sessionManager
	carts    cartStore
	jwtCfg   config.JWTConfig
	pwdCfg   config.PasswordConfig
	now      func() time.Time
}

// NewService builds the users service.
func NewService(repo *Repository, sessions sessionManager, carts cartStore, jwtCfg config.JWTConfig, pwdCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		carts:    carts,
		jwtCfg:   jwtCfg,
		pwdCfg:   pwdCfg,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and username required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.pwdCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email or username already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	matched, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	result, err := s.mintSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if guest := strings.TrimSpace(input.GuestSessionID); guest != "" {
		if err := s.adoptCart(ctx, guest, result.SessionID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp last login")
	}
	user.LastLoginAt = &now

	return result, nil
}

func (s *service) Refresh(ctx context.Context, claims *auth.AccessTokenClaims, refreshToken string) (*AuthResult, error) {
	if claims == nil || claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	newSessionID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	// The cart is keyed by the jti, so it follows the rotated session.
	if err := s.adoptCart(ctx, claims.ID, newSessionID); err != nil {
		return nil, err
	}

	accessToken, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		JTI:      newSessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		SessionID:    newSessionID,
	}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) mintSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	sessionID := session.NewAccessID()

	refreshToken, err := s.sessions.Generate(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	accessToken, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		JTI:      sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
	}, nil
}

// adoptCart merges the cart stored under fromID into toID's cart and drops
// the source, so line quantities survive login and token rotation.
func (s *service) adoptCart(ctx context.Context, fromID, toID string) error {
	if fromID == "" || fromID == toID {
		return nil
	}
	source, err := s.carts.Load(ctx, fromID)
	if err != nil {
		return err
	}
	if source.IsEmpty() {
		return nil
	}
	target, err := s.carts.Load(ctx, toID)
	if err != nil {
		return err
	}
	for id, qty := range source {
		target.Add(id, qty)
	}
	if err := s.carts.Save(ctx, toID, target); err != nil {
		return err
	}
	return s.carts.Clear(ctx, fromID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
