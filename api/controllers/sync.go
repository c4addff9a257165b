package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/api/middleware"
	"github.com/ventahub/ventahub-backend/api/responses"
	"github.com/ventahub/ventahub-backend/api/validators"
	syncsvc "github.com/ventahub/ventahub-backend/internal/sync"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
)

type syncRequest struct {
	AccountID uuid.UUID  `json:"account_id" validate:"required"`
	ChannelID *uuid.UUID `json:"channel_id,omitempty"`
	Direction string     `json:"direction,omitempty"`
}

// TriggerSync handles POST /sync/{resource}. The response is HTTP 200 for any
// completed batch; the envelope success flag carries the aggregate outcome.
func TriggerSync(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		resource, err := enums.ParseSyncResource(chi.URLParam(r, "resource"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sync resource"))
			return
		}

		var payload syncRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := syncsvc.SyncInput{
			Identity:  identity,
			AccountID: payload.AccountID,
			Resource:  resource,
			ChannelID: payload.ChannelID,
		}
		if payload.Direction != "" {
			direction, err := enums.ParseSyncDirection(payload.Direction)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sync direction"))
				return
			}
			input.Direction = direction
		}

		result, err := svc.Sync(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteOutcome(w, result.AggregateSuccess, result)
	}
}

// SyncStatus handles GET /sync/status.
func SyncStatus(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
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
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Status(r.Context(), identity, accountID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
