package sync

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ventahub/ventahub-backend/internal/channels/adapters"
	"github.com/ventahub/ventahub-backend/internal/inventory"
	"github.com/ventahub/ventahub-backend/internal/products"
	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
)

// Importer persists records pulled from external channels. All writes are
// idempotent upserts: products key on (account_id, external_id), inventory on
// (product_id, warehouse), orders on (account_id, external_id), so repeating
// a pull with unchanged remote data changes nothing.
type Importer interface {
	ImportProducts(ctx context.Context, accountID uuid.UUID, records []adapters.RemoteProduct) (int, error)
	ImportInventory(ctx context.Context, accountID uuid.UUID, records []adapters.RemoteInventory) (int, error)
	ImportOrders(ctx context.Context, accountID uuid.UUID, records []adapters.RemoteOrder) (int, error)
}

type importer struct {
	db        *gorm.DB
	products  *products.Repository
	inventory *inventory.Repository
}

// NewImporter builds the default importer on the shared connection.
func NewImporter(db *gorm.DB) Importer {
	return &importer{
		db:        db,
		products:  products.NewRepository(db),
		inventory: inventory.NewRepository(db),
	}
}

func (i *importer) ImportProducts(ctx context.Context, accountID uuid.UUID, records []adapters.RemoteProduct) (int, error) {
	count := 0
	for _, record := range records {
		externalID := strings.TrimSpace(record.ExternalID)
		if externalID == "" {
			continue
		}
		product := &models.Product{
			AccountID:  accountID,
			ExternalID: &externalID,
			Name:       record.Name,
			SKU:        record.SKU,
			PriceCents: record.PriceCents,
			IsActive:   record.Active,
		}
		if err := i.products.UpsertByExternalID(ctx, product); err != nil {
			return count, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert imported product")
		}
		count++
	}
	return count, nil
}

// ImportInventory resolves each remote line to a local product by external id
// and writes an absolute quantity. Lines for products this account has never
// imported are skipped, not failed.
func (i *importer) ImportInventory(ctx context.Context, accountID uuid.UUID, records []adapters.RemoteInventory) (int, error) {
	externalIDs := make([]string, 0, len(records))
	for _, record := range records {
		if id := strings.TrimSpace(record.ProductExternalID); id != "" {
			externalIDs = append(externalIDs, id)
		}
	}
	known, err := i.products.FindByExternalIDs(ctx, accountID, externalIDs)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve imported products")
	}

	count := 0
	for _, record := range records {
		product, ok := known[strings.TrimSpace(record.ProductExternalID)]
		if !ok {
			continue
		}
		warehouse := strings.TrimSpace(record.Warehouse)
		if warehouse == "" {
			warehouse = models.DefaultWarehouse
		}
		quantity := record.Quantity
		if quantity < 0 {
			quantity = 0
		}
		if _, err := i.inventory.Upsert(ctx, product.ID, warehouse, quantity); err != nil {
			return count, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert imported inventory")
		}
		count++
	}
	return count, nil
}

// ImportOrders records external orders for visibility. Imported orders carry
// no local lines; their totals come from the channel and no inventory is
// touched, since the channel already accounted for its own stock.
func (i *importer) ImportOrders(ctx context.Context, accountID uuid.UUID, records []adapters.RemoteOrder) (int, error) {
	count := 0
	for _, record := range records {
		externalID := strings.TrimSpace(record.ExternalID)
		if externalID == "" {
			continue
		}
		order := models.Order{
			AccountID:        accountID,
			ExternalID:       &externalID,
			Type:             enums.OrderTypeChannel,
			Status:           mapImportedStatus(record.Status),
			TotalAmountCents: record.TotalAmountCents,
		}
		if notes := strings.TrimSpace(record.Notes); notes != "" {
			order.Notes = &notes
		}
		err := i.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "account_id"}, {Name: "external_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"status":             order.Status,
					"total_amount_cents": order.TotalAmountCents,
					"updated_at":         gorm.Expr("CURRENT_TIMESTAMP"),
				}),
			}).
			Omit("Items").
			Create(&order).Error
		if err != nil {
			return count, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert imported order")
		}
		count++
	}
	return count, nil
}

// mapImportedStatus folds channel-specific order states onto the local set.
// Anything unrecognized lands in pending so it surfaces for review.
func mapImportedStatus(remote string) enums.OrderStatus {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "paid", "confirmed", "authorized":
		return enums.OrderStatusConfirmed
	case "processing", "partially_paid":
		return enums.OrderStatusProcessing
	case "shipped", "fulfilled":
		return enums.OrderStatusShipped
	case "delivered":
		return enums.OrderStatusDelivered
	case "cancelled", "canceled", "voided", "refunded":
		return enums.OrderStatusCancelled
	default:
		return enums.OrderStatusPending
	}
}
