package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/internal/inventory"
	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
	"github.com/ventahub/ventahub-backend/pkg/metrics"
	"github.com/ventahub/ventahub-backend/pkg/pagination"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

// EventOrderCreated is the audit event written for every fulfillment attempt.
const EventOrderCreated = "manual_order_created"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type membershipChecker interface {
	GetMembership(ctx context.Context, userID, accountID uuid.UUID) (*models.AccountMembership, error)
}

type productReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// InventoryStore isolates the stock reads and the conditional decrement the
// engine performs inside its transaction.
type InventoryStore interface {
	GetForProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, warehouse string) (map[uuid.UUID]models.Inventory, error)
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, warehouse string, qty int) (bool, error)
}

type auditWriter interface {
	Append(ctx context.Context, accountID uuid.UUID, eventType string, status enums.SyncLogStatus, payload types.JSONMap) error
}

// Service is the order fulfillment engine.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error)
	List(ctx context.Context, identity auth.Identity, accountID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	memberships membershipChecker
	products    productReader
	stock       InventoryStore
	audit       auditWriter
	metrics     *metrics.SyncMetrics
	logg        *logger.Logger
}

// ServiceParams collects the fulfillment engine dependencies.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Memberships membershipChecker
	Products    productReader
	Stock       InventoryStore
	Audit       auditWriter
	Metrics     *metrics.SyncMetrics
	Logger      *logger.Logger
}

// NewService builds the fulfillment engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit writer required")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		memberships: params.Memberships,
		products:    params.Products,
		stock:       params.Stock,
		audit:       params.Audit,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

// CreateOrder validates the request against current stock and commits the
// order, its lines, and the inventory decrements as one transaction. Every
// terminal outcome after authorization leaves one audit row, commit or not.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, input.Identity, input.AccountID); err != nil {
		return nil, err
	}

	view, err := s.fulfill(ctx, input)
	s.appendOrderAudit(ctx, input, err)
	if err != nil {
		s.metrics.IncOrder("error")
		return nil, err
	}
	s.metrics.IncOrder("success")
	return view, nil
}

func (s *service) fulfill(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}

	// One batch read; a shorter result than the request also catches
	// duplicate or fabricated ids.
	resolved, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve products")
	}
	if len(resolved) != len(input.Items) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	productByID := make(map[uuid.UUID]models.Product, len(resolved))
	for _, product := range resolved {
		if product.AccountID != input.AccountID {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %s does not belong to account", product.ID)
		}
		productByID[product.ID] = product
	}

	order := &models.Order{
		AccountID: input.AccountID,
		Type:      input.Type,
		Status:    enums.OrderStatusPending,
		Notes:     input.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stock, err := s.stock.GetForProducts(ctx, tx, ids, models.DefaultWarehouse)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read inventory")
		}

		// All items are checked against the same snapshot before any
		// decrement is applied. A missing row is zero stock.
		for _, item := range input.Items {
			available := stock[item.ProductID].Quantity
			if available < item.Quantity {
				return insufficientStock(item.ProductID, available, item.Quantity)
			}
		}

		total := 0
		for _, item := range input.Items {
			total += productByID[item.ProductID].PriceCents * item.Quantity
		}
		order.TotalAmountCents = total

		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				OrderID:        order.ID,
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				UnitPriceCents: productByID[item.ProductID].PriceCents,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order items")
		}
		order.Items = items

		// The snapshot check above is advisory; this conditional decrement
		// is what actually prevents overdraw under concurrent orders. A
		// zero-row update means another request won the stock and the whole
		// order rolls back.
		for _, item := range input.Items {
			ok, err := s.stock.Decrement(ctx, tx, item.ProductID, models.DefaultWarehouse, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement inventory")
			}
			if !ok {
				return insufficientStock(item.ProductID, 0, item.Quantity)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toView(order, productByID), nil
}

// UpdateStatus applies an explicit status transition. Only set membership is
// validated; the forward-only transition graph is not enforced.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", input.Status)
	}

	if err := s.authorize(ctx, input.Identity, input.AccountID); err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.AccountID != input.AccountID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = input.Status

	return s.toView(order, nil), nil
}

func (s *service) List(ctx context.Context, identity auth.Identity, accountID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error) {
	if err := s.authorize(ctx, identity, accountID); err != nil {
		return nil, err
	}
	result, err := s.repo.List(ctx, accountID, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

func (s *service) authorize(ctx context.Context, identity auth.Identity, accountID uuid.UUID) error {
	if identity.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account_id is required")
	}
	_, err := s.memberships.GetMembership(ctx, identity.UserID, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "no membership for account")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return nil
}

// appendOrderAudit writes the audit row for a fulfillment attempt. It runs on
// a cancellation-detached context so a dropped client cannot lose the trail,
// and a failed append never fails the order itself.
func (s *service) appendOrderAudit(ctx context.Context, input CreateOrderInput, outcome error) {
	items := make([]any, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID.String(),
			"quantity":   item.Quantity,
		})
	}
	payload := types.JSONMap{
		"type":  string(input.Type),
		"items": items,
	}
	status := enums.SyncLogStatusSuccess
	if outcome != nil {
		status = enums.SyncLogStatusError
		payload["error"] = outcome.Error()
	}

	detached := context.WithoutCancel(ctx)
	if err := s.audit.Append(detached, input.AccountID, EventOrderCreated, status, payload); err != nil && s.logg != nil {
		s.logg.Error(detached, "failed to append order audit log", err)
	}
}

func (s *service) toView(order *models.Order, productByID map[uuid.UUID]models.Product) *OrderView {
	view := &OrderView{
		ID:               order.ID,
		AccountID:        order.AccountID,
		Type:             order.Type,
		Status:           order.Status,
		Notes:            order.Notes,
		TotalAmountCents: order.TotalAmountCents,
		Items:            make([]ItemView, 0, len(order.Items)),
		CreatedAt:        order.CreatedAt,
	}
	for _, item := range order.Items {
		itemView := ItemView{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
		if product, ok := productByID[item.ProductID]; ok {
			itemView.ProductName = product.Name
			itemView.ProductSKU = product.SKU
		}
		view.Items = append(view.Items, itemView)
	}
	return view
}

func validateCreateInput(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product_id is required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if !input.Type.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order type %q", input.Type)
	}
	return nil
}

func insufficientStock(productID uuid.UUID, available, requested int) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "insufficient stock for product %s", productID).
		WithDetails(map[string]any{
			"product_id": productID.String(),
			"available":  available,
			"requested":  requested,
		})
}

type inventoryStoreImpl struct{}

// NewInventoryStore exposes the default transactional inventory store.
func NewInventoryStore() InventoryStore {
	return inventoryStoreImpl{}
}

func (inventoryStoreImpl) GetForProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, warehouse string) (map[uuid.UUID]models.Inventory, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory read")
	}
	return inventory.NewRepository(tx).GetForProducts(ctx, productIDs, warehouse)
}

func (inventoryStoreImpl) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, warehouse string, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "decrement quantity must be positive")
	}
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory decrement")
	}
	return inventory.NewRepository(tx).Decrement(ctx, productID, warehouse, qty)
}
