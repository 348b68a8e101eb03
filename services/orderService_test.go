package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/store"
)

// --- in-memory fakes ---

type fakeOrderStore struct {
	mu sync.Mutex
	// keyed by order code
	orders map[string]*models.Order
	// inject n version conflicts before a write goes through
	conflictsToInject int
	// pretend the open-order lookup misses n times, simulating a racing
	// writer that created the order after our read
	openLookupMisses int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*models.Order)}
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	c.Status_history = append([]models.StatusChange(nil), o.Status_history...)
	return &c
}

func (f *fakeOrderStore) Insert(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.orders[order.Order_code]; exists {
		return store.ErrDuplicateCode
	}
	if order.Table_id != "" && order.Open {
		for _, existing := range f.orders {
			if existing.Web_id == order.Web_id && existing.Table_id == order.Table_id && existing.Open {
				return store.ErrDuplicateOpenOrder
			}
		}
	}
	f.orders[order.Order_code] = cloneOrder(order)
	return nil
}

func (f *fakeOrderStore) FindByCode(ctx context.Context, webID int, orderCode string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderCode]
	if !ok || order.Web_id != webID {
		return nil, store.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (f *fakeOrderStore) FindOpenByTable(ctx context.Context, webID int, tableID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openLookupMisses > 0 {
		f.openLookupMisses--
		return nil, store.ErrNotFound
	}
	for _, order := range f.orders {
		if order.Web_id == webID && order.Table_id == tableID && order.Open {
			return cloneOrder(order), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrderStore) FindByWebID(ctx context.Context, webID int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if order.Web_id == webID {
			out = append(out, *cloneOrder(order))
		}
	}
	return out, nil
}

func (f *fakeOrderStore) FindActiveByTable(ctx context.Context, webID int, tableID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Order
	for _, order := range f.orders {
		if order.Web_id != webID || order.Table_id != tableID {
			continue
		}
		if order.Payment_status == models.PaymentPaid {
			continue
		}
		if latest == nil || order.Created_at.After(latest.Created_at) {
			latest = order
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return cloneOrder(latest), nil
}

func (f *fakeOrderStore) Update(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictsToInject > 0 {
		f.conflictsToInject--
		return store.ErrVersionConflict
	}
	current, ok := f.orders[order.Order_code]
	if !ok || current.Version != order.Version {
		return store.ErrVersionConflict
	}
	updated := cloneOrder(order)
	updated.Version = order.Version + 1
	f.orders[order.Order_code] = updated
	order.Version = updated.Version
	return nil
}

func (f *fakeOrderStore) HasOpenOrderForTable(ctx context.Context, webID int, tableID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.Web_id == webID && order.Table_id == tableID && order.Open {
			return true, nil
		}
	}
	return false, nil
}

type fakeTableRegistry struct {
	mu           sync.Mutex
	tables       map[string]*models.Table
	failSetCount int
}

func newFakeTableRegistry(ids ...string) *fakeTableRegistry {
	f := &fakeTableRegistry{tables: make(map[string]*models.Table)}
	for _, id := range ids {
		f.tables[id] = &models.Table{Table_id: id, Web_id: 1, Status: models.TableAvailable}
	}
	return f
}

func (f *fakeTableRegistry) Find(ctx context.Context, webID int, tableID string) (*models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table, ok := f.tables[tableID]
	if !ok || table.Web_id != webID {
		return nil, store.ErrNotFound
	}
	copied := *table
	return &copied, nil
}

func (f *fakeTableRegistry) All(ctx context.Context, webID int) ([]models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Table
	for _, table := range f.tables {
		if table.Web_id == webID {
			out = append(out, *table)
		}
	}
	return out, nil
}

func (f *fakeTableRegistry) SetStatus(ctx context.Context, webID int, tableID string, status models.TableStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetCount > 0 {
		f.failSetCount--
		return errors.New("registry unavailable")
	}
	table, ok := f.tables[tableID]
	if !ok || table.Web_id != webID {
		return store.ErrNotFound
	}
	table.Status = status
	return nil
}

func (f *fakeTableRegistry) status(tableID string) models.TableStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[tableID].Status
}

type fakeCatalog struct {
	foods map[string]models.Food
}

func newFakeCatalog(prices map[string]float64) *fakeCatalog {
	foods := make(map[string]models.Food)
	for id, price := range prices {
		p := price
		foods[id] = models.Food{Food_id: id, Web_id: 1, Price: &p}
	}
	return &fakeCatalog{foods: foods}
}

func (f *fakeCatalog) FindByIDs(ctx context.Context, webID int, foodIDs []string) (map[string]models.Food, error) {
	out := make(map[string]models.Food)
	for _, id := range foodIDs {
		if food, ok := f.foods[id]; ok && food.Web_id == webID {
			out[id] = food
		}
	}
	return out, nil
}

func newTestService() (*OrderService, *fakeOrderStore, *fakeTableRegistry) {
	orders := newFakeOrderStore()
	tables := newFakeTableRegistry("T1", "T2")
	catalog := newFakeCatalog(map[string]float64{"foodA": 10, "foodB": 2.5})
	return NewOrderService(orders, tables, catalog), orders, tables
}

// --- placement and merge ---

func TestPlaceOrderCreatesOrder(t *testing.T) {
	svc, _, tables := newTestService()
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 2}})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if len(order.Order_code) != orderCodeLength {
		t.Errorf("order code %q, want %d characters", order.Order_code, orderCodeLength)
	}
	if order.Order_status != models.OrderPending || order.Payment_status != models.PaymentPending {
		t.Errorf("new order statuses = %s/%s, want pending/pending", order.Order_status, order.Payment_status)
	}
	if order.Total_price != 20 {
		t.Errorf("total = %v, want 20", order.Total_price)
	}
	if len(order.Status_history) != 1 {
		t.Fatalf("history length = %d, want 1 seed entry", len(order.Status_history))
	}
	if order.Status_history[0].Previous_order_status != nil {
		t.Error("seed history entry must have nil previous status")
	}
	if tables.status("T1") != models.TableBusy {
		t.Errorf("table T1 = %s, want busy", tables.status("T1"))
	}
}

func TestPlaceOrderMergesIntoOpenOrder(t *testing.T) {
	svc, orders, _ := newTestService()
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 2}})
	if err != nil {
		t.Fatalf("first place: %v", err)
	}
	second, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 2}})
	if err != nil {
		t.Fatalf("second place: %v", err)
	}
	if first.Order_code != second.Order_code {
		t.Fatalf("merge created a second order: %s vs %s", first.Order_code, second.Order_code)
	}
	if len(second.Items) != 1 || second.Items[0].Quantity != 4 {
		t.Errorf("items = %+v, want one line with quantity 4", second.Items)
	}
	if second.Total_price != 40 {
		t.Errorf("total = %v, want 40", second.Total_price)
	}
	if len(orders.orders) != 1 {
		t.Errorf("store holds %d orders, want 1", len(orders.orders))
	}
}

func TestPlaceOrderAppendsNewLineForNewFood(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}}); err != nil {
		t.Fatalf("place: %v", err)
	}
	order, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodB", Quantity: 2}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2 lines", len(order.Items))
	}
	if order.Total_price != 15 {
		t.Errorf("total = %v, want 15", order.Total_price)
	}
}

func TestPlaceOrderUnknownFoodFailsAtomically(t *testing.T) {
	svc, orders, tables := newTestService()
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{
		{Food_id: "foodA", Quantity: 1},
		{Food_id: "nope", Quantity: 1},
	})
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("err = %v, want ErrInvalidItem", err)
	}
	if len(orders.orders) != 0 {
		t.Error("partial write: order persisted despite invalid item")
	}
	if tables.status("T1") != models.TableAvailable {
		t.Error("table flipped busy despite failed placement")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceOrder(ctx, 1, "T1", nil); !errors.Is(err, ErrNoItems) {
		t.Errorf("empty items: err = %v, want ErrNoItems", err)
	}
	if _, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 0}}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := svc.PlaceOrder(ctx, 1, "T9", []PlacedItem{{Food_id: "foodA", Quantity: 1}}); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("missing table: err = %v, want ErrTableNotFound", err)
	}
}

func TestPlaceOrderRetriesAsMergeWhenCreateLosesRace(t *testing.T) {
	svc, orders, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	// Next placement reads "no open order" (stale), tries to create, hits
	// the unique constraint and must come back around as a merge.
	orders.openLookupMisses = 1
	order, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}})
	if err != nil {
		t.Fatalf("racing place: %v", err)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("store holds %d orders, want exactly 1 open order for the table", len(orders.orders))
	}
	if order.Items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2 after merge", order.Items[0].Quantity)
	}
}

func TestPlaceOrderConflictAfterRetriesExhausted(t *testing.T) {
	svc, orders, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	orders.conflictsToInject = maxAttempts
	_, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict after %d attempts", err, maxAttempts)
	}
}

func TestPlaceOrderWithoutTable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 1, "", []PlacedItem{{Food_id: "foodB", Quantity: 4}})
	if err != nil {
		t.Fatalf("counter order: %v", err)
	}
	if order.Table_id != "" {
		t.Errorf("table id = %q, want empty", order.Table_id)
	}
	if order.Total_price != 10 {
		t.Errorf("total = %v, want 10", order.Total_price)
	}
}

// --- status transitions ---

func place(t *testing.T, svc *OrderService) *models.Order {
	t.Helper()
	order, err := svc.PlaceOrder(context.Background(), 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 2}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	return order
}

func advance(t *testing.T, svc *OrderService, code string, status models.OrderStatus) *models.Order {
	t.Helper()
	order, err := svc.UpdateStatus(context.Background(), 1, code, StatusUpdate{Order_status: status})
	if err != nil {
		t.Fatalf("advance to %s: %v", status, err)
	}
	return order
}

func TestPaymentRejectedUntilReady(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)

	_, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid})
	if !errors.Is(err, ErrOrderNotReady) {
		t.Fatalf("err = %v, want ErrOrderNotReady while pending", err)
	}

	advance(t, svc, order.Order_code, models.OrderPreparing)
	_, err = svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid})
	if !errors.Is(err, ErrOrderNotReady) {
		t.Fatalf("err = %v, want ErrOrderNotReady while preparing", err)
	}
}

func TestPaymentCompletesOrderAndReleasesTable(t *testing.T) {
	svc, _, tables := newTestService()
	order := place(t, svc)

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)

	paid, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Order_status != models.OrderCompleted {
		t.Errorf("order status = %s, want completed", paid.Order_status)
	}
	if paid.Open {
		t.Error("paid order still marked open")
	}
	for _, item := range paid.Items {
		if item.Item_status != models.ItemCompleted {
			t.Errorf("item %s = %s, want completed", item.Item_id, item.Item_status)
		}
	}
	if tables.status("T1") != models.TableAvailable {
		t.Errorf("table = %s, want available after payment", tables.status("T1"))
	}
}

func TestDirectCompleteRequiresPayment(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)

	_, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Order_status: models.OrderCompleted})
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("err = %v, want ErrPaymentRequired", err)
	}
}

func TestCancellationCascade(t *testing.T) {
	svc, _, tables := newTestService()
	order := place(t, svc)

	cancelled, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Order_status: models.OrderCancelled})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Payment_status != models.PaymentCancelled {
		t.Errorf("payment = %s, want cancelled", cancelled.Payment_status)
	}
	if tables.status("T1") != models.TableAvailable {
		t.Error("table not released after cancellation")
	}

	_, err = svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Order_status: models.OrderPreparing})
	if !errors.Is(err, ErrOrderAlreadyCancelled) {
		t.Fatalf("err = %v, want ErrOrderAlreadyCancelled", err)
	}
}

func TestPaymentCancellationCancelsOrder(t *testing.T) {
	svc, _, tables := newTestService()
	order := place(t, svc)

	updated, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentCancelled})
	if err != nil {
		t.Fatalf("cancel payment: %v", err)
	}
	if updated.Order_status != models.OrderCancelled {
		t.Errorf("order = %s, want cancelled", updated.Order_status)
	}
	if tables.status("T1") != models.TableAvailable {
		t.Error("table not released")
	}
}

func TestPaidOrderRejectsFurtherUpdates(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)
	if _, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	_, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentCancelled})
	if !errors.Is(err, ErrOrderAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrOrderAlreadyCompleted (payment is terminal)", err)
	}
}

func TestFailedPaymentCanBeRetried(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)

	failed, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentFailed})
	if err != nil {
		t.Fatalf("fail payment: %v", err)
	}
	if failed.Order_status != models.OrderReady {
		t.Errorf("order = %s, want still ready after failed charge", failed.Order_status)
	}

	paid, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid})
	if err != nil {
		t.Fatalf("retry payment: %v", err)
	}
	if paid.Order_status != models.OrderCompleted {
		t.Errorf("order = %s, want completed", paid.Order_status)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{}); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Errorf("empty update: err = %v, want ErrNoFieldsToUpdate", err)
	}
	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Order_status: "shipped"}); !errors.Is(err, ErrInvalidStatusValue) {
		t.Errorf("bad status: err = %v, want ErrInvalidStatusValue", err)
	}
	if _, err := svc.UpdateStatus(ctx, 1, "NOPE1234", StatusUpdate{Order_status: models.OrderPreparing}); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("unknown code: err = %v, want ErrOrderNotFound", err)
	}
	if _, err := svc.UpdateStatus(ctx, 2, order.Order_code, StatusUpdate{Order_status: models.OrderPreparing}); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("wrong merchant: err = %v, want ErrOrderNotFound", err)
	}
	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Order_status: models.OrderReady}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending->ready: err = %v, want ErrInvalidTransition", err)
	}
}

func TestItemStatusUpdates(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)
	ctx := context.Background()
	itemID := order.Items[0].Item_id

	updated, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{
		Item_updates: []ItemUpdate{{Item_id: itemID, Status: models.ItemReady}},
	})
	if err != nil {
		t.Fatalf("item update: %v", err)
	}
	if updated.Items[0].Item_status != models.ItemReady {
		t.Errorf("item = %s, want ready", updated.Items[0].Item_status)
	}

	// Item-only update still appends a history entry, with unchanged
	// top-level statuses on both sides.
	last := updated.Status_history[len(updated.Status_history)-1]
	if *last.Previous_order_status != updated.Order_status || last.New_order_status != updated.Order_status {
		t.Error("item-only update must record identical previous/new order status")
	}

	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{
		Item_updates: []ItemUpdate{{Item_id: "missing", Status: models.ItemReady}},
	}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("missing item: err = %v, want ErrItemNotFound", err)
	}
	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{
		Item_updates: []ItemUpdate{{Item_id: itemID, Status: models.ItemPending}},
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ready->pending: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelledItemExcludedFromTotal(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}}); err != nil {
		t.Fatalf("place: %v", err)
	}
	order, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodB", Quantity: 2}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	var lineB string
	for _, item := range order.Items {
		if item.Food_id == "foodB" {
			lineB = item.Item_id
		}
	}
	updated, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{
		Item_updates: []ItemUpdate{{Item_id: lineB, Status: models.ItemCancelled}},
	})
	if err != nil {
		t.Fatalf("cancel line: %v", err)
	}
	if updated.Total_price != 10 {
		t.Errorf("total = %v, want 10 after cancelling foodB line", updated.Total_price)
	}

	// Merging the same food again opens a fresh pending line rather than
	// reviving the cancelled one.
	merged, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodB", Quantity: 1}})
	if err != nil {
		t.Fatalf("re-merge: %v", err)
	}
	if len(merged.Items) != 3 {
		t.Errorf("items = %d, want 3 lines (cancelled line kept)", len(merged.Items))
	}
	if merged.Total_price != 12.5 {
		t.Errorf("total = %v, want 12.5", merged.Total_price)
	}
}

func TestHistoryAppendOnlyAndChained(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)
	ctx := context.Background()

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)
	final, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	history := final.Status_history
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4 (seed + 3 transitions)", len(history))
	}
	if history[0].Previous_order_status != nil {
		t.Error("seed entry must have nil previous status")
	}
	for i := 1; i < len(history); i++ {
		if *history[i].Previous_order_status != history[i-1].New_order_status {
			t.Errorf("entry %d previous %s != prior new %s", i, *history[i].Previous_order_status, history[i-1].New_order_status)
		}
		if *history[i].Previous_payment_status != history[i-1].New_payment_status {
			t.Errorf("entry %d previous payment mismatch", i)
		}
	}
}

func TestUpdateStatusConflictAfterRetries(t *testing.T) {
	svc, orders, _ := newTestService()
	order := place(t, svc)

	orders.conflictsToInject = maxAttempts
	_, err := svc.UpdateStatus(context.Background(), 1, order.Order_code, StatusUpdate{Order_status: models.OrderPreparing})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestTransitionCommitsEvenIfTableReleaseFails(t *testing.T) {
	svc, _, tables := newTestService()
	order := place(t, svc)
	ctx := context.Background()

	tables.failSetCount = 1
	cancelled, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Order_status: models.OrderCancelled})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Order_status != models.OrderCancelled {
		t.Error("transition must commit despite table release failure")
	}
	if tables.status("T1") != models.TableBusy {
		t.Fatal("precondition: release should have failed")
	}

	fixed, err := svc.ReconcileTables(ctx, 1)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if fixed != 1 {
		t.Errorf("fixed = %d, want 1", fixed)
	}
	if tables.status("T1") != models.TableAvailable {
		t.Error("reconcile did not release the table")
	}
}

// --- queries ---

func TestListOrdersGroupsItems(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{
		Item_updates: []ItemUpdate{{Item_id: order.Items[0].Item_id, Status: models.ItemReady}},
	}); err != nil {
		t.Fatalf("item update: %v", err)
	}

	summaries, err := svc.ListOrders(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	summary := summaries[0]
	if len(summary.Items_by_status[models.ItemReady]) != 1 {
		t.Errorf("ready group = %d items, want 1", len(summary.Items_by_status[models.ItemReady]))
	}
	if summary.Item_count != 2 {
		t.Errorf("item count = %d, want 2", summary.Item_count)
	}
}

func TestActiveOrderForTable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.ActiveOrderForTable(ctx, 1, "T1"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("empty table: err = %v, want ErrOrderNotFound", err)
	}

	order := place(t, svc)
	active, err := svc.ActiveOrderForTable(ctx, 1, "T1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.Order_code != order.Order_code {
		t.Errorf("active = %s, want %s", active.Order_code, order.Order_code)
	}

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)
	if _, err := svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := svc.ActiveOrderForTable(ctx, 1, "T1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("paid order still reported active: %v", err)
	}
}

func TestVerifyOrderScopedByMerchant(t *testing.T) {
	svc, _, _ := newTestService()
	order := place(t, svc)
	ctx := context.Background()

	found, err := svc.VerifyOrder(ctx, 1, order.Order_code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if found.Order_code != order.Order_code {
		t.Errorf("verify returned %s", found.Order_code)
	}
	if _, err := svc.VerifyOrder(ctx, 2, order.Order_code); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("cross-merchant verify: err = %v, want ErrOrderNotFound", err)
	}
}

// --- full dine-in walkthrough ---

func TestDineInLifecycle(t *testing.T) {
	svc, _, tables := newTestService()
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 2}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if order.Total_price != 20 || tables.status("T1") != models.TableBusy {
		t.Fatalf("after placement: total %v, table %s", order.Total_price, tables.status("T1"))
	}

	order, err = svc.PlaceOrder(ctx, 1, "T1", []PlacedItem{{Food_id: "foodA", Quantity: 1}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if order.Total_price != 30 || len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Fatalf("after merge: total %v, items %+v", order.Total_price, order.Items)
	}

	advance(t, svc, order.Order_code, models.OrderPreparing)
	advance(t, svc, order.Order_code, models.OrderReady)

	order, err = svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentPaid})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if order.Order_status != models.OrderCompleted || tables.status("T1") != models.TableAvailable {
		t.Fatalf("after payment: status %s, table %s", order.Order_status, tables.status("T1"))
	}

	_, err = svc.UpdateStatus(ctx, 1, order.Order_code, StatusUpdate{Payment_status: models.PaymentCancelled})
	if !errors.Is(err, ErrOrderAlreadyCompleted) {
		t.Fatalf("post-payment cancel: err = %v, want ErrOrderAlreadyCompleted", err)
	}
}

func TestNewOrderCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := newOrderCode()
		if len(code) != orderCodeLength {
			t.Fatalf("code %q length %d, want %d", code, len(code), orderCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(orderCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}
