package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

func siigoChannel() *models.Channel {
	return &models.Channel{
		ExternalID: "acme-tenant",
		Config:     types.JSONMap{"username": "api@acme.co", "access_key": "k3y"},
	}
}

func newSiigoServer(t *testing.T, productsJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Errorf("decode auth body: %v", err)
			}
			if creds["username"] != "api@acme.co" || creds["access_key"] != "k3y" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"bearer-123"}`))
		case "/v1/products":
			if got := r.Header.Get("Authorization"); got != "Bearer bearer-123" {
				t.Errorf("authorization header = %q", got)
			}
			_, _ = w.Write([]byte(productsJSON))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSiigoPullProductsSignsInWithConfigCredentials(t *testing.T) {
	server := newSiigoServer(t, `{"results":[
		{"id":"p-1","code":"SKU-1","name":"Cafe 500g","active":true,
		 "available_quantity":14,
		 "prices":[{"price_list":[{"value":35.9}]}]}
	]}`)
	defer server.Close()

	adapter := NewSiigoAdapter(WithSiigoBaseURL(server.URL))
	products, err := adapter.PullProducts(context.Background(), siigoChannel())
	if err != nil {
		t.Fatalf("PullProducts: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if products[0].ExternalID != "p-1" || products[0].SKU != "SKU-1" || products[0].PriceCents != 3590 {
		t.Fatalf("product = %+v", products[0])
	}
}

func TestSiigoPullInventoryUsesAvailableQuantity(t *testing.T) {
	server := newSiigoServer(t, `{"results":[
		{"id":"p-1","available_quantity":14},
		{"id":"p-2","available_quantity":0}
	]}`)
	defer server.Close()

	adapter := NewSiigoAdapter(WithSiigoBaseURL(server.URL))
	levels, err := adapter.PullInventory(context.Background(), siigoChannel())
	if err != nil {
		t.Fatalf("PullInventory: %v", err)
	}
	if len(levels) != 2 || levels[0].Quantity != 14 || levels[1].Quantity != 0 {
		t.Fatalf("levels = %+v", levels)
	}
}

func TestSiigoMissingCredentialFailsBeforeAnyCall(t *testing.T) {
	adapter := NewSiigoAdapter()
	channel := &models.Channel{ExternalID: "acme-tenant", Config: types.JSONMap{"username": "api@acme.co"}}
	err := adapter.TestConnection(context.Background(), channel)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstream {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestSiigoPullOrdersUnsupported(t *testing.T) {
	adapter := NewSiigoAdapter()
	_, err := adapter.PullOrders(context.Background(), siigoChannel())
	if err == nil {
		t.Fatal("expected unsupported error")
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(NewShopifyAdapter(""), NewSiigoAdapter())

	adapter, err := registry.Lookup(enums.ChannelTypeSiigo)
	if err != nil {
		t.Fatalf("Lookup(siigo): %v", err)
	}
	if adapter.Type() != enums.ChannelTypeSiigo {
		t.Fatalf("adapter type = %s", adapter.Type())
	}

	if _, err := registry.Lookup(enums.ChannelTypeERP); err == nil {
		t.Fatal("expected error for unregistered type")
	}
}
