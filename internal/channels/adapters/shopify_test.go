package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/types"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
)

func shopifyChannel(token string) *models.Channel {
	return &models.Channel{
		ExternalID:  "acme.myshopify.com",
		AccessToken: token,
	}
}

func TestShopifyPullProductsParsesVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/products.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "shpat_abc" {
			t.Errorf("token header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":1001,"title":"Mug","status":"active","variants":[{"sku":"MUG-1","price":"12.50"}]},
			{"id":1002,"title":"Poster","status":"draft","variants":[]}
		]}`))
	}))
	defer server.Close()

	adapter := NewShopifyAdapter("2024-01", WithShopifyBaseURL(server.URL))
	products, err := adapter.PullProducts(context.Background(), shopifyChannel("shpat_abc"))
	if err != nil {
		t.Fatalf("PullProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].ExternalID != "1001" || products[0].SKU != "MUG-1" || products[0].PriceCents != 1250 {
		t.Fatalf("first product = %+v", products[0])
	}
	if !products[0].Active || products[1].Active {
		t.Fatalf("active flags = %v %v", products[0].Active, products[1].Active)
	}
	if products[1].PriceCents != 0 {
		t.Fatalf("variant-less product should price at 0, got %d", products[1].PriceCents)
	}
}

func TestShopifyErrorStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewShopifyAdapter("", WithShopifyBaseURL(server.URL))
	err := adapter.TestConnection(context.Background(), shopifyChannel("bad"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstream {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestShopifyRejectsChannelWithoutToken(t *testing.T) {
	adapter := NewShopifyAdapter("")
	if err := adapter.TestConnection(context.Background(), shopifyChannel("")); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestShopifyPushInventoryRequiresLocation(t *testing.T) {
	adapter := NewShopifyAdapter("")
	channel := shopifyChannel("shpat_abc")
	_, err := adapter.PushInventory(context.Background(), channel, []InventoryExport{{ProductExternalID: "1", Quantity: 3}})
	if err == nil {
		t.Fatal("expected error without location_id in config")
	}

	pushed := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/inventory_levels/set.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		pushed++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"inventory_level":{"available":3}}`))
	}))
	defer server.Close()

	adapter = NewShopifyAdapter("2024-01", WithShopifyBaseURL(server.URL))
	channel.Config = types.JSONMap{"location_id": "77"}
	count, err := adapter.PushInventory(context.Background(), channel, []InventoryExport{
		{ProductExternalID: "1", Quantity: 3},
		{ProductExternalID: "2", Quantity: 0},
	})
	if err != nil {
		t.Fatalf("PushInventory: %v", err)
	}
	if count != 2 || pushed != 2 {
		t.Fatalf("count = %d, server saw %d, want 2", count, pushed)
	}
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"12.50", 1250},
		{"0.99", 99},
		{"100", 10000},
		{" 5.00 ", 500},
		{"", 0},
		{"not-a-price", 0},
	}
	for _, tc := range cases {
		if got := parsePriceCents(tc.in); got != tc.want {
			t.Errorf("parsePriceCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
