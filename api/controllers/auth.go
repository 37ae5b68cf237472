package controllers

import (
	"net/http"
	"strings"

	"github.com/jtrevino/storefront-backend/api/middleware"
	"github.com/jtrevino/storefront-backend/api/responses"
	"github.com/jtrevino/storefront-backend/api/validators"
	"github.com/jtrevino/storefront-backend/internal/users"
	pkgAuth "github.com/jtrevino/storefront-backend/pkg/auth"
	"github.com/jtrevino/storefront-backend/pkg/config"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
	"github.com/jtrevino/storefront-backend/pkg/logger"
)

type registerPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshPayload struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authUserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type authResponse struct {
	User         authUserResponse `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

// AuthRegister creates an account.
func AuthRegister(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload registerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Register(ctx, users.RegisterInput{
			Email:    payload.Email,
			Username: payload.Username,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"user": authUserResponse{
				ID:       user.ID.String(),
				Email:    user.Email,
				Username: user.Username,
				IsAdmin:  user.IsAdmin,
			},
		})
	}
}

// AuthLogin exchanges credentials for a token pair. A guest session id in
// X-Session-Id lets the anonymous cart follow the visitor into the account.
func AuthLogin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, users.LoginInput{
			Email:          payload.Email,
			Password:       payload.Password,
			GuestSessionID: strings.TrimSpace(r.Header.Get("X-Session-Id")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, authResponse{
			User: authUserResponse{
				ID:       result.User.ID.String(),
				Email:    result.User.Email,
				Username: result.User.Username,
				IsAdmin:  result.User.IsAdmin,
			},
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		})
	}
}

// AuthRefresh rotates the refresh token and mints a new access token.
func AuthRefresh(svc users.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload refreshPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claims, err := pkgAuth.ParseAccessTokenAllowExpired(jwtCfg, payload.AccessToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}

		result, err := svc.Refresh(ctx, claims, payload.RefreshToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, authResponse{
			User: authUserResponse{
				ID:       result.User.ID.String(),
				Email:    result.User.Email,
				Username: result.User.Username,
				IsAdmin:  result.User.IsAdmin,
			},
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		})
	}
}

// AuthLogout revokes the caller's session.
func AuthLogout(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
			return
		}

		if err := svc.Logout(ctx, sessionID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
