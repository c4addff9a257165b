package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/enums"
)

// OrderItemInput is one requested line. Prices are never accepted here; the
// engine snapshots the product's current price at commit time.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput carries everything the fulfillment engine needs for one
// attempt.
type CreateOrderInput struct {
	Identity  auth.Identity
	AccountID uuid.UUID
	Type      enums.OrderType
	Items     []OrderItemInput
	Notes     *string
}

// UpdateStatusInput carries an explicit status transition request.
type UpdateStatusInput struct {
	Identity  auth.Identity
	AccountID uuid.UUID
	OrderID   uuid.UUID
	Status    enums.OrderStatus
}

// ListFilters narrows the order list.
type ListFilters struct {
	Status *enums.OrderStatus
	Type   *enums.OrderType
}

// ItemView joins an order line with its product summary for list responses.
type ItemView struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductSKU     string    `json:"product_sku"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
}

// OrderView is one order with joined lines.
type OrderView struct {
	ID               uuid.UUID         `json:"id"`
	AccountID        uuid.UUID         `json:"account_id"`
	Type             enums.OrderType   `json:"type"`
	Status           enums.OrderStatus `json:"status"`
	Notes            *string           `json:"notes,omitempty"`
	TotalAmountCents int               `json:"total_amount_cents"`
	Items            []ItemView        `json:"items"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
