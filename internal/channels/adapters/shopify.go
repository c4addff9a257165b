package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
)

const (
	defaultShopifyAPIVersion       = "2024-01"
	shopifyBodyReadLimit     int64 = 1024
)

// ShopifyAdapter talks to the Shopify Admin REST API. The channel's
// external_id is the shop domain and access_token is the Admin API token.
type ShopifyAdapter struct {
	httpClient *http.Client
	apiVersion string
	baseURL    string
}

// ShopifyOption configures optional adapter behavior.
type ShopifyOption func(*ShopifyAdapter)

// WithShopifyHTTPClient overrides the default HTTP client.
func WithShopifyHTTPClient(client *http.Client) ShopifyOption {
	return func(a *ShopifyAdapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithShopifyBaseURL overrides the per-shop base URL. Meant for tests and
// API-compatible mock servers.
func WithShopifyBaseURL(baseURL string) ShopifyOption {
	return func(a *ShopifyAdapter) {
		a.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// NewShopifyAdapter builds the Shopify adapter for the given API version.
func NewShopifyAdapter(apiVersion string, opts ...ShopifyOption) *ShopifyAdapter {
	adapter := &ShopifyAdapter{
		apiVersion: strings.TrimSpace(apiVersion),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	if adapter.apiVersion == "" {
		adapter.apiVersion = defaultShopifyAPIVersion
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

// Type implements Adapter.
func (a *ShopifyAdapter) Type() enums.ChannelType {
	return enums.ChannelTypeShopify
}

// TestConnection verifies the token by loading the shop resource.
func (a *ShopifyAdapter) TestConnection(ctx context.Context, channel *models.Channel) error {
	var resp struct {
		Shop struct {
			ID int64 `json:"id"`
		} `json:"shop"`
	}
	return a.get(ctx, channel, "shop.json", &resp)
}

// PullProducts lists the shop's products with their first variant's price.
func (a *ShopifyAdapter) PullProducts(ctx context.Context, channel *models.Channel) ([]RemoteProduct, error) {
	var resp struct {
		Products []struct {
			ID       int64  `json:"id"`
			Title    string `json:"title"`
			Status   string `json:"status"`
			Variants []struct {
				SKU   string `json:"sku"`
				Price string `json:"price"`
			} `json:"variants"`
		} `json:"products"`
	}
	if err := a.get(ctx, channel, "products.json", &resp); err != nil {
		return nil, err
	}

	products := make([]RemoteProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		product := RemoteProduct{
			ExternalID: fmt.Sprintf("%d", p.ID),
			Name:       p.Title,
			Active:     p.Status == "active",
		}
		if len(p.Variants) > 0 {
			product.SKU = p.Variants[0].SKU
			product.PriceCents = parsePriceCents(p.Variants[0].Price)
		}
		products = append(products, product)
	}
	return products, nil
}

// PullInventory reads stock from each product's variants. Shopify reports
// quantities per variant; the first variant stands in for the product.
func (a *ShopifyAdapter) PullInventory(ctx context.Context, channel *models.Channel) ([]RemoteInventory, error) {
	var resp struct {
		Products []struct {
			ID       int64 `json:"id"`
			Variants []struct {
				InventoryQuantity int `json:"inventory_quantity"`
			} `json:"variants"`
		} `json:"products"`
	}
	if err := a.get(ctx, channel, "products.json", &resp); err != nil {
		return nil, err
	}

	levels := make([]RemoteInventory, 0, len(resp.Products))
	for _, p := range resp.Products {
		level := RemoteInventory{ProductExternalID: fmt.Sprintf("%d", p.ID)}
		if len(p.Variants) > 0 {
			level.Quantity = p.Variants[0].InventoryQuantity
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// PullOrders lists recent orders with their lines.
func (a *ShopifyAdapter) PullOrders(ctx context.Context, channel *models.Channel) ([]RemoteOrder, error) {
	var resp struct {
		Orders []struct {
			ID              int64     `json:"id"`
			FinancialStatus string    `json:"financial_status"`
			TotalPrice      string    `json:"total_price"`
			Note            string    `json:"note"`
			CreatedAt       time.Time `json:"created_at"`
			LineItems       []struct {
				ProductID int64  `json:"product_id"`
				Quantity  int    `json:"quantity"`
				Price     string `json:"price"`
			} `json:"line_items"`
		} `json:"orders"`
	}
	if err := a.get(ctx, channel, "orders.json?status=any", &resp); err != nil {
		return nil, err
	}

	orders := make([]RemoteOrder, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		order := RemoteOrder{
			ExternalID:       fmt.Sprintf("%d", o.ID),
			Status:           o.FinancialStatus,
			TotalAmountCents: parsePriceCents(o.TotalPrice),
			Notes:            o.Note,
			CreatedAt:        o.CreatedAt,
		}
		for _, line := range o.LineItems {
			order.Lines = append(order.Lines, RemoteOrderLine{
				ProductExternalID: fmt.Sprintf("%d", line.ProductID),
				Quantity:          line.Quantity,
				UnitPriceCents:    parsePriceCents(line.Price),
			})
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// PushInventory sets absolute stock levels on the shop's configured location.
// The channel config must carry a location_id.
func (a *ShopifyAdapter) PushInventory(ctx context.Context, channel *models.Channel, levels []InventoryExport) (int, error) {
	locationID := channel.Config.GetString("location_id")
	if locationID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeUpstream, "shopify channel config missing location_id")
	}

	pushed := 0
	for _, level := range levels {
		payload := map[string]any{
			"location_id":       locationID,
			"inventory_item_id": level.ProductExternalID,
			"available":         level.Quantity,
		}
		var resp struct {
			InventoryLevel struct {
				Available int `json:"available"`
			} `json:"inventory_level"`
		}
		if err := a.post(ctx, channel, "inventory_levels/set.json", payload, &resp); err != nil {
			return pushed, err
		}
		pushed++
	}
	return pushed, nil
}

func (a *ShopifyAdapter) get(ctx context.Context, channel *models.Channel, path string, out any) error {
	return a.do(ctx, channel, http.MethodGet, path, nil, out)
}

func (a *ShopifyAdapter) post(ctx context.Context, channel *models.Channel, path string, body any, out any) error {
	return a.do(ctx, channel, http.MethodPost, path, body, out)
}

func (a *ShopifyAdapter) do(ctx context.Context, channel *models.Channel, method, path string, body, out any) error {
	if channel == nil {
		return pkgerrors.New(pkgerrors.CodeUpstream, "shopify channel not configured")
	}
	shop := strings.TrimSpace(channel.ExternalID)
	if shop == "" {
		return pkgerrors.New(pkgerrors.CodeUpstream, "shopify channel missing shop domain")
	}
	token := strings.TrimSpace(channel.AccessToken)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUpstream, "shopify channel missing access token")
	}

	base := a.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s", shop)
	}
	url := fmt.Sprintf("%s/admin/api/%s/%s", base, a.apiVersion, path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "marshal shopify request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build shopify request")
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute shopify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, shopifyBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeUpstream,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"shopify request failed")
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode shopify response")
	}
	return nil
}

// parsePriceCents converts a decimal price string to integer cents. Malformed
// input yields zero rather than a poisoned import.
func parsePriceCents(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	var price float64
	if _, err := fmt.Sscanf(trimmed, "%f", &price); err != nil {
		return 0
	}
	return int(math.Round(price * 100))
}
