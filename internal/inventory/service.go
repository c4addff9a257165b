package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/db/models"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type membershipChecker interface {
	GetMembership(ctx context.Context, userID, accountID uuid.UUID) (*models.AccountMembership, error)
}

// Service validates and applies manual stock adjustments.
type Service interface {
	SetStock(ctx context.Context, input SetStockInput) (*models.Inventory, error)
	ListStock(ctx context.Context, identity auth.Identity, accountID uuid.UUID) ([]models.Inventory, error)
}

// SetStockInput carries a stock upsert request for one warehouse row.
type SetStockInput struct {
	AccountID uuid.UUID
	ProductID uuid.UUID
	Warehouse string
	Quantity  int
}

type service struct {
	repo        *Repository
	products    productLoader
	memberships membershipChecker
}

// NewService builds the inventory service with the required dependencies.
func NewService(repo *Repository, products productLoader, memberships membershipChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	return &service{repo: repo, products: products, memberships: memberships}, nil
}

func (s *service) SetStock(ctx context.Context, input SetStockInput) (*models.Inventory, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or positive")
	}
	warehouse := input.Warehouse
	if warehouse == "" {
		warehouse = models.DefaultWarehouse
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.AccountID != input.AccountID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	row, err := s.repo.Upsert(ctx, input.ProductID, warehouse, input.Quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert inventory")
	}
	return row, nil
}

func (s *service) ListStock(ctx context.Context, identity auth.Identity, accountID uuid.UUID) ([]models.Inventory, error) {
	if err := s.authorize(ctx, identity, accountID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return rows, nil
}

func (s *service) authorize(ctx context.Context, identity auth.Identity, accountID uuid.UUID) error {
	if identity.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account_id is required")
	}
	if _, err := s.memberships.GetMembership(ctx, identity.UserID, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "no membership for account")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return nil
}
