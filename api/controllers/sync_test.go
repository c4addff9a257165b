package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	syncsvc "github.com/ventahub/ventahub-backend/internal/sync"
	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

type stubSyncService struct {
	sync   func(ctx context.Context, input syncsvc.SyncInput) (*syncsvc.SyncResult, error)
	status func(ctx context.Context, identity auth.Identity, accountID uuid.UUID, limit int) (*syncsvc.StatusView, error)
}

func (s *stubSyncService) Sync(ctx context.Context, input syncsvc.SyncInput) (*syncsvc.SyncResult, error) {
	if s.sync != nil {
		return s.sync(ctx, input)
	}
	return &syncsvc.SyncResult{}, nil
}

func (s *stubSyncService) Status(ctx context.Context, identity auth.Identity, accountID uuid.UUID, limit int) (*syncsvc.StatusView, error) {
	if s.status != nil {
		return s.status(ctx, identity, accountID, limit)
	}
	return &syncsvc.StatusView{}, nil
}

func syncRouter(svc syncsvc.Service) *chi.Mux {
	router := chi.NewRouter()
	router.Post("/sync/{resource}", TriggerSync(svc, nil))
	router.Get("/sync/status", SyncStatus(svc, nil))
	return router
}

func TestTriggerSyncAllChannelsFailedStillHTTP200(t *testing.T) {
	accountID := uuid.New()
	svc := &stubSyncService{
		sync: func(ctx context.Context, input syncsvc.SyncInput) (*syncsvc.SyncResult, error) {
			return &syncsvc.SyncResult{
				Resource:         input.Resource,
				Direction:        enums.SyncDirectionFromChannel,
				AggregateSuccess: false,
				Results: []syncsvc.ChannelResult{
					{ChannelID: uuid.New(), ChannelType: enums.ChannelTypeShopify, Success: false, Message: "status 401"},
				},
			}, nil
		},
	}

	body := `{"account_id":"` + accountID.String() + `"}`
	w := httptest.NewRecorder()
	syncRouter(svc).ServeHTTP(w, authedRequest(http.MethodPost, "/sync/products", body))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Success {
		t.Fatal("aggregate failure should surface as success=false")
	}
	if envelope.Data == nil {
		t.Fatal("per-channel results should still be returned")
	}
}

func TestTriggerSyncForwardsResourceAndDirection(t *testing.T) {
	accountID := uuid.New()
	var captured syncsvc.SyncInput
	svc := &stubSyncService{
		sync: func(ctx context.Context, input syncsvc.SyncInput) (*syncsvc.SyncResult, error) {
			captured = input
			return &syncsvc.SyncResult{AggregateSuccess: true}, nil
		},
	}

	body := `{"account_id":"` + accountID.String() + `","direction":"to_channel"}`
	w := httptest.NewRecorder()
	syncRouter(svc).ServeHTTP(w, authedRequest(http.MethodPost, "/sync/inventory", body))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if captured.Resource != enums.SyncResourceInventory {
		t.Fatalf("resource = %s, want inventory", captured.Resource)
	}
	if captured.Direction != enums.SyncDirectionToChannel {
		t.Fatalf("direction = %s, want to_channel", captured.Direction)
	}
}

func TestTriggerSyncRejectsUnknownResource(t *testing.T) {
	called := false
	svc := &stubSyncService{
		sync: func(ctx context.Context, input syncsvc.SyncInput) (*syncsvc.SyncResult, error) {
			called = true
			return nil, nil
		},
	}

	body := `{"account_id":"` + uuid.NewString() + `"}`
	w := httptest.NewRecorder()
	syncRouter(svc).ServeHTTP(w, authedRequest(http.MethodPost, "/sync/customers", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if called {
		t.Fatal("service should not run for an unknown resource")
	}
}

func TestSyncStatusClampsLimitQuery(t *testing.T) {
	accountID := uuid.New()
	var gotLimit int
	svc := &stubSyncService{
		status: func(ctx context.Context, identity auth.Identity, accountID uuid.UUID, limit int) (*syncsvc.StatusView, error) {
			gotLimit = limit
			return &syncsvc.StatusView{}, nil
		},
	}

	w := httptest.NewRecorder()
	target := "/sync/status?account_id=" + accountID.String()
	syncRouter(svc).ServeHTTP(w, authedRequest(http.MethodGet, target, ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotLimit != 50 {
		t.Fatalf("default limit = %d, want 50", gotLimit)
	}

	w = httptest.NewRecorder()
	syncRouter(svc).ServeHTTP(w, authedRequest(http.MethodGet, target+"&limit=9999", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range limit status = %d, want 400", w.Code)
	}
}
