package adapters

import (
	"context"
	"time"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
)

// RemoteProduct is a product record as reported by an external channel.
type RemoteProduct struct {
	ExternalID string
	Name       string
	SKU        string
	PriceCents int
	Active     bool
}

// RemoteInventory is one stock level as reported by an external channel.
// Warehouse may be empty; the importer falls back to the default warehouse.
type RemoteInventory struct {
	ProductExternalID string
	Warehouse         string
	Quantity          int
}

// RemoteOrderLine is one line of an imported order.
type RemoteOrderLine struct {
	ProductExternalID string
	Quantity          int
	UnitPriceCents    int
}

// RemoteOrder is an order record as reported by an external channel.
type RemoteOrder struct {
	ExternalID       string
	Status           string
	TotalAmountCents int
	Notes            string
	Lines            []RemoteOrderLine
	CreatedAt        time.Time
}

// ProductExport is the local product shape handed to pushing adapters.
type ProductExport struct {
	ExternalID string
	Name       string
	SKU        string
	PriceCents int
	Active     bool
}

// InventoryExport is the local stock shape handed to pushing adapters.
type InventoryExport struct {
	ProductExternalID string
	Warehouse         string
	Quantity          int
}

// Adapter is the capability set every channel type must provide. Credential
// shape is adapter-private: each adapter reads what it needs from the channel
// row and its config map.
type Adapter interface {
	Type() enums.ChannelType
	TestConnection(ctx context.Context, channel *models.Channel) error
	PullProducts(ctx context.Context, channel *models.Channel) ([]RemoteProduct, error)
	PullInventory(ctx context.Context, channel *models.Channel) ([]RemoteInventory, error)
	PullOrders(ctx context.Context, channel *models.Channel) ([]RemoteOrder, error)
}

// ProductPusher is the optional outbound product capability.
type ProductPusher interface {
	PushProducts(ctx context.Context, channel *models.Channel, products []ProductExport) (int, error)
}

// InventoryPusher is the optional outbound inventory capability.
type InventoryPusher interface {
	PushInventory(ctx context.Context, channel *models.Channel, levels []InventoryExport) (int, error)
}

// Registry maps channel types to their adapters. It is populated at startup
// and read-only afterwards.
type Registry struct {
	adapters map[enums.ChannelType]Adapter
}

// NewRegistry builds a registry from the provided adapters. Registering two
// adapters for the same type keeps the last one.
func NewRegistry(adapters ...Adapter) *Registry {
	registry := &Registry{adapters: make(map[enums.ChannelType]Adapter, len(adapters))}
	for _, adapter := range adapters {
		if adapter != nil {
			registry.adapters[adapter.Type()] = adapter
		}
	}
	return registry
}

// Lookup resolves the adapter for a channel type.
func (r *Registry) Lookup(channelType enums.ChannelType) (Adapter, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "channel registry not configured")
	}
	adapter, ok := r.adapters[channelType]
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeUpstream, "no adapter registered for channel type %q", channelType)
	}
	return adapter, nil
}

// ErrUnsupported builds the error adapters return for operations they do not
// offer.
func ErrUnsupported(channelType enums.ChannelType, operation string) error {
	return pkgerrors.Newf(pkgerrors.CodeUpstream, "%s adapter does not support %s", channelType, operation)
}
