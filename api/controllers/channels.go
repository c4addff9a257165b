package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/api/middleware"
	"github.com/ventahub/ventahub-backend/api/responses"
	"github.com/ventahub/ventahub-backend/api/validators"
	channelsvc "github.com/ventahub/ventahub-backend/internal/channels"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

type connectChannelRequest struct {
	AccountID   uuid.UUID     `json:"account_id" validate:"required"`
	Type        string        `json:"type" validate:"required"`
	ExternalID  string        `json:"external_id" validate:"required"`
	AccessToken string        `json:"access_token,omitempty"`
	Config      types.JSONMap `json:"config,omitempty"`
}

// ConnectChannel handles POST /channels.
func ConnectChannel(svc channelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "channel service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload connectChannelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		channel, err := svc.Connect(r.Context(), channelsvc.ConnectInput{
			Identity:    identity,
			AccountID:   payload.AccountID,
			Type:        enums.ChannelType(payload.Type),
			ExternalID:  payload.ExternalID,
			AccessToken: payload.AccessToken,
			Config:      payload.Config,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, channel)
	}
}

// ListChannels handles GET /channels.
func ListChannels(svc channelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "channel service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		accountID, err := validators.ParseQueryUUID(r, "account_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		channels, err := svc.List(r.Context(), identity, accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, channels)
	}
}

// TestChannel handles POST /channels/{id}/test.
func TestChannel(svc channelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "channel service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		channelID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel id"))
			return
		}

		result, err := svc.Test(r.Context(), identity, identity.AccountID, channelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// A failed credential is a result, not an HTTP error.
		responses.WriteOutcome(w, result.Healthy, result)
	}
}
