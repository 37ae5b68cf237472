package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jtrevino/storefront-backend/api/middleware"
	"github.com/jtrevino/storefront-backend/api/responses"
	"github.com/jtrevino/storefront-backend/api/validators"
	"github.com/jtrevino/storefront-backend/internal/checkout"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
	"github.com/jtrevino/storefront-backend/pkg/logger"
)

// Card fields are shape-checked only; nothing here talks to a payment
// gateway and the values are never stored.
type checkoutPayload struct {
	Name       string `json:"name" validate:"required,max=120"`
	Address    string `json:"address" validate:"required,max=250"`
	City       string `json:"city" validate:"required,max=120"`
	ZipCode    string `json:"zip_code" validate:"required,max=20"`
	CardNumber string `json:"card_number" validate:"required,min=12,max=19"`
	CardExpiry string `json:"card_expiry" validate:"required,max=7"`
	CardCVV    string `json:"card_cvv" validate:"required,min=3,max=4"`
}

// Checkout turns the session cart into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		rawUser := middleware.UserIDFromContext(ctx)
		if rawUser == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out"))
			return
		}
		userID, err := uuid.Parse(rawUser)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id is required"))
			return
		}

		var payload checkoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Execute(ctx, userID, sessionID, checkout.Input{
			Shipping: checkout.ShippingInfo{
				Name:    payload.Name,
				Address: payload.Address,
				City:    payload.City,
				Zip:     payload.ZipCode,
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"order": order})
	}
}
