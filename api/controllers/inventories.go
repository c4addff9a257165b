package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/api/middleware"
	"github.com/ventahub/ventahub-backend/api/responses"
	"github.com/ventahub/ventahub-backend/api/validators"
	inventorysvc "github.com/ventahub/ventahub-backend/internal/inventory"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
)

type setStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Warehouse *string   `json:"warehouse,omitempty"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
}

// SetStock handles PUT /inventories.
func SetStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload setStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse := ""
		if payload.Warehouse != nil {
			warehouse = *payload.Warehouse
		}

		row, err := svc.SetStock(r.Context(), inventorysvc.SetStockInput{
			AccountID: identity.AccountID,
			ProductID: payload.ProductID,
			Warehouse: warehouse,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

// ListStock handles GET /inventories.
func ListStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
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

		rows, err := svc.ListStock(r.Context(), identity, accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
