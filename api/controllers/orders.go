package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/api/middleware"
	"github.com/ventahub/ventahub-backend/api/responses"
	"github.com/ventahub/ventahub-backend/api/validators"
	ordersvc "github.com/ventahub/ventahub-backend/internal/orders"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
	"github.com/ventahub/ventahub-backend/pkg/pagination"
)

type createOrderRequest struct {
	AccountID uuid.UUID              `json:"account_id" validate:"required"`
	Type      string                 `json:"type" validate:"required"`
	Items     []createOrderItemEntry `json:"items" validate:"required,min=1,dive"`
	Notes     *string                `json:"notes,omitempty"`
}

type createOrderItemEntry struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateManualOrder handles POST /orders/manual.
func CreateManualOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]ordersvc.OrderItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, ordersvc.OrderItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.CreateOrder(r.Context(), ordersvc.CreateOrderInput{
			Identity:  identity,
			AccountID: payload.AccountID,
			Type:      enums.OrderType(payload.Type),
			Items:     items,
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders handles GET /orders.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
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
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters ordersvc.ListFilters
		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status := enums.OrderStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", raw))
				return
			}
			filters.Status = &status
		}
		if raw := validators.ParseQueryString(r, "type"); raw != "" {
			orderType := enums.OrderType(raw)
			if !orderType.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order type %q", raw))
				return
			}
			filters.Type = &orderType
		}

		result, err := svc.List(r.Context(), identity, accountID, filters, pagination.Params{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type updateOrderStatusRequest struct {
	AccountID uuid.UUID `json:"account_id" validate:"required"`
	Status    string    `json:"status" validate:"required"`
}

// UpdateOrderStatus handles PATCH /orders/{id}/status.
func UpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), ordersvc.UpdateStatusInput{
			Identity:  identity,
			AccountID: payload.AccountID,
			OrderID:   orderID,
			Status:    enums.OrderStatus(payload.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
