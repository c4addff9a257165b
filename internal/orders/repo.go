package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/pagination"
)

// Repository defines order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	List(ctx context.Context, accountID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) List(ctx context.Context, accountID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Preload("Items").
		Where("account_id = ?", accountID)

	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		qb = qb.Where("type = ?", *filters.Type)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	views, err := r.toViews(ctx, rows)
	if err != nil {
		return nil, err
	}

	return &ListResult{Orders: views, NextCursor: nextCursor}, nil
}

// toViews joins product summaries onto the order lines in one batch read.
func (r *repository) toViews(ctx context.Context, rows []models.Order) ([]OrderView, error) {
	productIDs := make([]uuid.UUID, 0)
	seen := map[uuid.UUID]bool{}
	for _, order := range rows {
		for _, item := range order.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	productByID := map[uuid.UUID]models.Product{}
	if len(productIDs) > 0 {
		var prods []models.Product
		if err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&prods).Error; err != nil {
			return nil, err
		}
		for _, p := range prods {
			productByID[p.ID] = p
		}
	}

	views := make([]OrderView, 0, len(rows))
	for _, order := range rows {
		view := OrderView{
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
			if p, ok := productByID[item.ProductID]; ok {
				itemView.ProductName = p.Name
				itemView.ProductSKU = p.SKU
			}
			view.Items = append(view.Items, itemView)
		}
		views = append(views, view)
	}
	return views, nil
}
