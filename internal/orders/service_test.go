package orders

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/pagination"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

type auditEntry struct {
	accountID uuid.UUID
	eventType string
	status    enums.SyncLogStatus
	payload   types.JSONMap
}

type decrementRecord struct {
	productID uuid.UUID
	qty       int
}

// fakeWorld models the store with serializable transactions: the mutex is
// held for the whole WithTx body, and journaled writes are undone when the
// closure returns an error.
type fakeWorld struct {
	mu sync.Mutex

	memberships map[uuid.UUID]map[uuid.UUID]bool
	products    map[uuid.UUID]models.Product
	stock       map[uuid.UUID]int

	orders     []models.Order
	orderItems []models.OrderItem

	txOrders     int
	txItems      int
	txDecrements []decrementRecord

	auditMu sync.Mutex
	audit   []auditEntry
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		memberships: make(map[uuid.UUID]map[uuid.UUID]bool),
		products:    make(map[uuid.UUID]models.Product),
		stock:       make(map[uuid.UUID]int),
	}
}

func (w *fakeWorld) addMembership(userID, accountID uuid.UUID) {
	if w.memberships[userID] == nil {
		w.memberships[userID] = make(map[uuid.UUID]bool)
	}
	w.memberships[userID][accountID] = true
}

func (w *fakeWorld) addProduct(accountID uuid.UUID, priceCents, stock int) uuid.UUID {
	id := uuid.New()
	w.products[id] = models.Product{ID: id, AccountID: accountID, Name: "p-" + id.String()[:8], PriceCents: priceCents}
	w.stock[id] = stock
	return id
}

func (w *fakeWorld) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.txOrders = 0
	w.txItems = 0
	w.txDecrements = nil

	err := fn(nil)
	if err != nil {
		w.orders = w.orders[:len(w.orders)-w.txOrders]
		w.orderItems = w.orderItems[:len(w.orderItems)-w.txItems]
		for _, d := range w.txDecrements {
			w.stock[d.productID] += d.qty
		}
	}
	return err
}

func (w *fakeWorld) GetMembership(ctx context.Context, userID, accountID uuid.UUID) (*models.AccountMembership, error) {
	if w.memberships[userID][accountID] {
		return &models.AccountMembership{UserID: userID, AccountID: accountID}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (w *fakeWorld) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if product, ok := w.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func (w *fakeWorld) GetForProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, warehouse string) (map[uuid.UUID]models.Inventory, error) {
	out := make(map[uuid.UUID]models.Inventory, len(productIDs))
	for _, id := range productIDs {
		if qty, ok := w.stock[id]; ok {
			out[id] = models.Inventory{ProductID: id, Warehouse: warehouse, Quantity: qty}
		}
	}
	return out, nil
}

func (w *fakeWorld) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, warehouse string, qty int) (bool, error) {
	if w.stock[productID] < qty {
		return false, nil
	}
	w.stock[productID] -= qty
	w.txDecrements = append(w.txDecrements, decrementRecord{productID: productID, qty: qty})
	return true, nil
}

func (w *fakeWorld) Append(ctx context.Context, accountID uuid.UUID, eventType string, status enums.SyncLogStatus, payload types.JSONMap) error {
	w.auditMu.Lock()
	defer w.auditMu.Unlock()
	w.audit = append(w.audit, auditEntry{accountID: accountID, eventType: eventType, status: status, payload: payload})
	return nil
}

func (w *fakeWorld) auditEntries() []auditEntry {
	w.auditMu.Lock()
	defer w.auditMu.Unlock()
	out := make([]auditEntry, len(w.audit))
	copy(out, w.audit)
	return out
}

func (w *fakeWorld) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	w.orders = append(w.orders, *order)
	w.txOrders++
	return nil
}

func (w *fakeWorld) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	w.orderItems = append(w.orderItems, items...)
	w.txItems += len(items)
	return nil
}

func (w *fakeWorld) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.orders {
		if w.orders[i].ID == id {
			order := w.orders[i]
			return &order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (w *fakeWorld) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.orders {
		if w.orders[i].ID == id {
			w.orders[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (w *fakeWorld) List(ctx context.Context, accountID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error) {
	return &ListResult{}, nil
}

type repoAdapter struct{ *fakeWorld }

func (r repoAdapter) WithTx(tx *gorm.DB) Repository { return r }

func newTestService(t *testing.T, world *fakeWorld) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:        repoAdapter{world},
		Tx:          world,
		Memberships: world,
		Products:    world,
		Stock:       world,
		Audit:       world,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateOrderCommitsOrderAndDecrementsStock(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	productID := world.addProduct(accountID, 1500, 5)

	svc := newTestService(t, world)

	view, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Identity:  auth.Identity{UserID: userID, AccountID: accountID},
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items:     []OrderItemInput{{ProductID: productID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if view.TotalAmountCents != 4500 {
		t.Fatalf("total = %d, want 4500", view.TotalAmountCents)
	}
	if len(view.Items) != 1 || view.Items[0].UnitPriceCents != 1500 {
		t.Fatalf("unexpected items: %+v", view.Items)
	}
	if view.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want pending", view.Status)
	}
	if got := world.stock[productID]; got != 2 {
		t.Fatalf("stock = %d, want 2", got)
	}

	entries := world.auditEntries()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].eventType != EventOrderCreated || entries[0].status != enums.SyncLogStatusSuccess {
		t.Fatalf("unexpected audit entry: %+v", entries[0])
	}
}

func TestCreateOrderInsufficientStockCommitsNothing(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	okProduct := world.addProduct(accountID, 1000, 10)
	lowProduct := world.addProduct(accountID, 1000, 1)

	svc := newTestService(t, world)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Identity:  auth.Identity{UserID: userID, AccountID: accountID},
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items: []OrderItemInput{
			{ProductID: okProduct, Quantity: 2},
			{ProductID: lowProduct, Quantity: 5},
		},
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error code = %v, want state conflict", err)
	}

	if len(world.orders) != 0 || len(world.orderItems) != 0 {
		t.Fatalf("rollback left orders=%d items=%d", len(world.orders), len(world.orderItems))
	}
	if world.stock[okProduct] != 10 || world.stock[lowProduct] != 1 {
		t.Fatalf("rollback left stock %d/%d", world.stock[okProduct], world.stock[lowProduct])
	}

	entries := world.auditEntries()
	if len(entries) != 1 || entries[0].status != enums.SyncLogStatusError {
		t.Fatalf("expected one error audit entry, got %+v", entries)
	}
	if _, ok := entries[0].payload["error"]; !ok {
		t.Fatal("audit payload missing error message")
	}
}

func TestCreateOrderSecondRequestRejectedOnceStockIsShort(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	productID := world.addProduct(accountID, 500, 5)

	svc := newTestService(t, world)
	input := CreateOrderInput{
		Identity:  auth.Identity{UserID: userID, AccountID: accountID},
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items:     []OrderItemInput{{ProductID: productID, Quantity: 3}},
	}

	if _, err := svc.CreateOrder(context.Background(), input); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if world.stock[productID] != 2 {
		t.Fatalf("stock after first order = %d, want 2", world.stock[productID])
	}

	if _, err := svc.CreateOrder(context.Background(), input); err == nil {
		t.Fatal("second order should fail with 2 in stock")
	}
	if world.stock[productID] != 2 {
		t.Fatalf("stock after rejected order = %d, want 2", world.stock[productID])
	}
}

func TestCreateOrderCrossAccountProductRejectedBeforeWrites(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	otherAccount := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	foreign := world.addProduct(otherAccount, 1000, 10)

	svc := newTestService(t, world)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Identity:  auth.Identity{UserID: userID, AccountID: accountID},
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items:     []OrderItemInput{{ProductID: foreign, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected cross-account rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error code = %v, want validation", err)
	}
	if len(world.orders) != 0 || world.stock[foreign] != 10 {
		t.Fatal("rejection must happen before any write")
	}
}

func TestCreateOrderDuplicateProductIDsRejected(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	productID := world.addProduct(accountID, 1000, 10)

	svc := newTestService(t, world)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Identity:  auth.Identity{UserID: userID, AccountID: accountID},
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items: []OrderItemInput{
			{ProductID: productID, Quantity: 1},
			{ProductID: productID, Quantity: 1},
		},
	})
	if err == nil {
		t.Fatal("expected duplicate product ids to be rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error code = %v, want not found", err)
	}
}

func TestCreateOrderWithoutMembershipUnauthorized(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	productID := world.addProduct(accountID, 1000, 10)

	svc := newTestService(t, world)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Identity:  auth.Identity{UserID: uuid.New(), AccountID: accountID},
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items:     []OrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected authorization failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("error code = %v, want unauthorized", err)
	}
	// No audit row before authorization succeeds.
	if len(world.auditEntries()) != 0 {
		t.Fatal("unauthorized request must not write audit rows")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	productID := world.addProduct(accountID, 1000, 10)

	svc := newTestService(t, world)
	identity := auth.Identity{UserID: userID, AccountID: accountID}

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"no items", CreateOrderInput{Identity: identity, AccountID: accountID, Type: enums.OrderTypeManual}},
		{"zero quantity", CreateOrderInput{Identity: identity, AccountID: accountID, Type: enums.OrderTypeManual,
			Items: []OrderItemInput{{ProductID: productID, Quantity: 0}}}},
		{"negative quantity", CreateOrderInput{Identity: identity, AccountID: accountID, Type: enums.OrderTypeManual,
			Items: []OrderItemInput{{ProductID: productID, Quantity: -2}}}},
		{"bad type", CreateOrderInput{Identity: identity, AccountID: accountID, Type: "telepathy",
			Items: []OrderItemInput{{ProductID: productID, Quantity: 1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("error code = %v, want validation", err)
			}
		})
	}
}

func TestConcurrentOrdersNeverOverdrawStock(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)

	const initialStock = 20
	productA := world.addProduct(accountID, 100, initialStock)
	productB := world.addProduct(accountID, 250, initialStock)

	svc := newTestService(t, world)

	const workers = 32
	var wg sync.WaitGroup
	ordered := make([]int, workers)
	succeeded := make([]bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(n)))
			qty := 1 + rng.Intn(3)
			ordered[n] = qty
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				Identity:  auth.Identity{UserID: userID, AccountID: accountID},
				AccountID: accountID,
				Type:      enums.OrderTypeManual,
				Items: []OrderItemInput{
					{ProductID: productA, Quantity: qty},
					{ProductID: productB, Quantity: qty},
				},
			})
			succeeded[n] = err == nil
		}(i)
	}
	wg.Wait()

	if world.stock[productA] < 0 || world.stock[productB] < 0 {
		t.Fatalf("stock went negative: a=%d b=%d", world.stock[productA], world.stock[productB])
	}

	committed := 0
	for i := range ordered {
		if succeeded[i] {
			committed += ordered[i]
		}
	}
	if got := initialStock - world.stock[productA]; got != committed {
		t.Fatalf("product A decrements = %d, committed quantities = %d", got, committed)
	}
	if got := initialStock - world.stock[productB]; got != committed {
		t.Fatalf("product B decrements = %d, committed quantities = %d", got, committed)
	}
	if len(world.orders) != countTrue(succeeded) {
		t.Fatalf("orders = %d, successful requests = %d", len(world.orders), countTrue(succeeded))
	}
}

func countTrue(values []bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}

func TestUpdateStatusValidatesSetMembershipOnly(t *testing.T) {
	world := newFakeWorld()
	accountID := uuid.New()
	userID := uuid.New()
	world.addMembership(userID, accountID)
	productID := world.addProduct(accountID, 1000, 10)

	svc := newTestService(t, world)
	identity := auth.Identity{UserID: userID, AccountID: accountID}

	view, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Identity:  identity,
		AccountID: accountID,
		Type:      enums.OrderTypeManual,
		Items:     []OrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		Identity: identity, AccountID: accountID, OrderID: view.ID, Status: "teleported",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("invalid status error = %v, want validation", err)
	}

	// The forward-only graph is not enforced; any member of the set is
	// accepted, including a backwards move.
	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		Identity: identity, AccountID: accountID, OrderID: view.ID, Status: enums.OrderStatusDelivered,
	})
	if err != nil {
		t.Fatalf("UpdateStatus delivered: %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("status = %s, want delivered", updated.Status)
	}
	if _, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		Identity: identity, AccountID: accountID, OrderID: view.ID, Status: enums.OrderStatusPending,
	}); err != nil {
		t.Fatalf("backwards transition should be accepted: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		Identity: identity, AccountID: accountID, OrderID: uuid.New(), Status: enums.OrderStatusConfirmed,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("missing order error = %v, want not found", err)
	}
}
