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
	defaultSiigoBaseURL       = "https://api.siigo.com"
	siigoBodyReadLimit  int64 = 1024
)

// SiigoAdapter talks to the Siigo accounting API. Siigo does not use the
// channel's access_token column: its credential is a username and access_key
// pair stored in the channel config, exchanged for a short-lived bearer on
// each batch of calls.
type SiigoAdapter struct {
	httpClient *http.Client
	baseURL    string
}

// SiigoOption configures optional adapter behavior.
type SiigoOption func(*SiigoAdapter)

// WithSiigoHTTPClient overrides the default HTTP client.
func WithSiigoHTTPClient(client *http.Client) SiigoOption {
	return func(a *SiigoAdapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithSiigoBaseURL overrides the API base URL.
func WithSiigoBaseURL(baseURL string) SiigoOption {
	return func(a *SiigoAdapter) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			a.baseURL = trimmed
		}
	}
}

// NewSiigoAdapter builds the Siigo adapter.
func NewSiigoAdapter(opts ...SiigoOption) *SiigoAdapter {
	adapter := &SiigoAdapter{
		baseURL:    defaultSiigoBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

// Type implements Adapter.
func (a *SiigoAdapter) Type() enums.ChannelType {
	return enums.ChannelTypeSiigo
}

// TestConnection verifies the stored credential pair by signing in.
func (a *SiigoAdapter) TestConnection(ctx context.Context, channel *models.Channel) error {
	_, err := a.signIn(ctx, channel)
	return err
}

// PullProducts lists products from the Siigo catalog.
func (a *SiigoAdapter) PullProducts(ctx context.Context, channel *models.Channel) ([]RemoteProduct, error) {
	items, err := a.listProducts(ctx, channel)
	if err != nil {
		return nil, err
	}

	products := make([]RemoteProduct, 0, len(items))
	for _, item := range items {
		product := RemoteProduct{
			ExternalID: item.ID,
			Name:       item.Name,
			SKU:        item.Code,
			Active:     item.Active,
		}
		if len(item.Prices) > 0 && len(item.Prices[0].PriceList) > 0 {
			product.PriceCents = int(math.Round(item.Prices[0].PriceList[0].Value * 100))
		}
		products = append(products, product)
	}
	return products, nil
}

// PullInventory reads available quantities from the same catalog listing.
func (a *SiigoAdapter) PullInventory(ctx context.Context, channel *models.Channel) ([]RemoteInventory, error) {
	items, err := a.listProducts(ctx, channel)
	if err != nil {
		return nil, err
	}

	levels := make([]RemoteInventory, 0, len(items))
	for _, item := range items {
		levels = append(levels, RemoteInventory{
			ProductExternalID: item.ID,
			Quantity:          int(item.AvailableQuantity),
		})
	}
	return levels, nil
}

// PullOrders is not offered by Siigo's API surface.
func (a *SiigoAdapter) PullOrders(ctx context.Context, channel *models.Channel) ([]RemoteOrder, error) {
	return nil, ErrUnsupported(enums.ChannelTypeSiigo, "pull_orders")
}

type siigoProduct struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Active            bool    `json:"active"`
	AvailableQuantity float64 `json:"available_quantity"`
	Prices            []struct {
		PriceList []struct {
			Value float64 `json:"value"`
		} `json:"price_list"`
	} `json:"prices"`
}

func (a *SiigoAdapter) listProducts(ctx context.Context, channel *models.Channel) ([]siigoProduct, error) {
	token, err := a.signIn(ctx, channel)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/products", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build siigo products request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute siigo products request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, siigoBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"siigo products request failed")
	}

	var payload struct {
		Results []siigoProduct `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode siigo products response")
	}
	return payload.Results, nil
}

func (a *SiigoAdapter) signIn(ctx context.Context, channel *models.Channel) (string, error) {
	if channel == nil {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "siigo channel not configured")
	}
	username := channel.Config.GetString("username")
	accessKey := channel.Config.GetString("access_key")
	if username == "" || accessKey == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "siigo channel config missing username or access_key")
	}

	payload, err := json.Marshal(map[string]string{
		"username":   username,
		"access_key": accessKey,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "marshal siigo auth request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build siigo auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute siigo auth request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, siigoBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"siigo sign-in failed")
	}

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode siigo auth response")
	}
	if strings.TrimSpace(auth.AccessToken) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "siigo sign-in returned empty token")
	}
	return auth.AccessToken, nil
}
