package services

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxAttempts bounds the read-merge-write retry loop. Past this the caller
// gets a conflict and decides whether to resubmit.
const maxAttempts = 3

const orderCodeLength = 8
const orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// OrderStore is the slice of persistence the lifecycle manager needs.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByCode(ctx context.Context, webID int, orderCode string) (*models.Order, error)
	FindOpenByTable(ctx context.Context, webID int, tableID string) (*models.Order, error)
	FindByWebID(ctx context.Context, webID int) ([]models.Order, error)
	FindActiveByTable(ctx context.Context, webID int, tableID string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	HasOpenOrderForTable(ctx context.Context, webID int, tableID string) (bool, error)
}

// TableRegistry flips and reads table occupancy.
type TableRegistry interface {
	Find(ctx context.Context, webID int, tableID string) (*models.Table, error)
	All(ctx context.Context, webID int) ([]models.Table, error)
	SetStatus(ctx context.Context, webID int, tableID string, status models.TableStatus) error
}

// Catalog resolves food ids to priced entries within one merchant scope.
type Catalog interface {
	FindByIDs(ctx context.Context, webID int, foodIDs []string) (map[string]models.Food, error)
}

type PlacedItem struct {
	Food_id  string `json:"foodId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type ItemUpdate struct {
	Item_id string            `json:"itemId" validate:"required"`
	Status  models.ItemStatus `json:"status" validate:"required"`
}

type StatusUpdate struct {
	Order_status   models.OrderStatus   `json:"orderStatus"`
	Payment_status models.PaymentStatus `json:"paymentStatus"`
	Item_updates   []ItemUpdate         `json:"itemUpdates"`
}

// OrderSummary is the read model for listings: the order plus its items
// partitioned by status, with display counts. Nothing here is stored.
type OrderSummary struct {
	models.Order
	Items_by_status map[models.ItemStatus][]models.OrderItem `json:"items_by_status"`
	Item_count      int                                      `json:"item_count"`
}

type OrderService struct {
	orders  OrderStore
	tables  TableRegistry
	catalog Catalog
}

func NewOrderService(orders OrderStore, tables TableRegistry, catalog Catalog) *OrderService {
	return &OrderService{orders: orders, tables: tables, catalog: catalog}
}

// PlaceOrder opens a new order for the table or merges the submitted items
// into the one already open. Item validation is atomic: one unknown food id
// fails the whole batch before anything is written.
func (s *OrderService) PlaceOrder(ctx context.Context, webID int, tableID string, items []PlacedItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	foodIDs := make([]string, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if !seen[item.Food_id] {
			seen[item.Food_id] = true
			foodIDs = append(foodIDs, item.Food_id)
		}
	}

	foods, err := s.catalog.FindByIDs(ctx, webID, foodIDs)
	if err != nil {
		log.Println("catalog lookup failed:", err)
		return nil, DependencyError(err)
	}
	if len(foods) != len(foodIDs) {
		return nil, ErrInvalidItem
	}

	if tableID != "" {
		if _, err := s.tables.Find(ctx, webID, tableID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrTableNotFound
			}
			log.Println("table lookup failed:", err)
			return nil, DependencyError(err)
		}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var open *models.Order
		if tableID != "" {
			open, err = s.orders.FindOpenByTable(ctx, webID, tableID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Println("open order lookup failed:", err)
				return nil, DependencyError(err)
			}
		}

		if open == nil {
			order, err := s.createOrder(ctx, webID, tableID, items, foods)
			if err == nil {
				return order, nil
			}
			// Somebody opened an order for this table first; merge instead.
			if errors.Is(err, store.ErrDuplicateOpenOrder) {
				continue
			}
			if errors.Is(err, store.ErrDuplicateCode) {
				continue
			}
			return nil, err
		}

		mergeItems(open, items, foods)
		open.Total_price = open.TotalOf()
		open.Updated_at = time.Now()

		if err := s.orders.Update(ctx, open); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			log.Println("order update failed:", err)
			return nil, DependencyError(err)
		}
		return open, nil
	}
	return nil, ErrConflict
}

func (s *OrderService) createOrder(ctx context.Context, webID int, tableID string, items []PlacedItem, foods map[string]models.Food) (*models.Order, error) {
	now := time.Now()
	order := &models.Order{
		ID:             primitive.NewObjectID(),
		Order_code:     newOrderCode(),
		Web_id:         webID,
		Table_id:       tableID,
		Order_status:   models.OrderPending,
		Payment_status: models.PaymentPending,
		Open:           true,
		Created_at:     now,
		Updated_at:     now,
	}
	mergeItems(order, items, foods)
	order.Total_price = order.TotalOf()
	order.Status_history = []models.StatusChange{{
		Timestamp:          now,
		New_order_status:   models.OrderPending,
		New_payment_status: models.PaymentPending,
	}}

	if err := s.orders.Insert(ctx, order); err != nil {
		if errors.Is(err, store.ErrDuplicateOpenOrder) || errors.Is(err, store.ErrDuplicateCode) {
			return nil, err
		}
		log.Println("order insert failed:", err)
		return nil, DependencyError(err)
	}

	if tableID != "" {
		if err := s.tables.SetStatus(ctx, webID, tableID, models.TableBusy); err != nil {
			// The order is committed either way; the reconcile pass picks
			// this up if the flip never lands.
			log.Println("table busy flip failed, pending reconciliation:", err)
		}
	}
	return order, nil
}

// mergeItems folds the submitted batch into the order. A line with the same
// food id that is still pending absorbs the quantity; anything else becomes
// a fresh pending line priced from the catalog snapshot.
func mergeItems(order *models.Order, items []PlacedItem, foods map[string]models.Food) {
	now := time.Now()
	for _, placed := range items {
		merged := false
		for i := range order.Items {
			line := &order.Items[i]
			if line.Food_id == placed.Food_id && line.Item_status == models.ItemPending {
				line.Quantity += placed.Quantity
				line.Added_at = now
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		food := foods[placed.Food_id]
		order.Items = append(order.Items, models.OrderItem{
			Item_id:     primitive.NewObjectID().Hex(),
			Food_id:     placed.Food_id,
			Quantity:    placed.Quantity,
			Unit_price:  *food.Price,
			Item_status: models.ItemPending,
			Added_at:    now,
		})
	}
}

// UpdateStatus applies item, order and payment transitions in that request
// order, enforcing the lifecycle rules, and appends exactly one history
// entry for the accepted change.
func (s *OrderService) UpdateStatus(ctx context.Context, webID int, orderCode string, update StatusUpdate) (*models.Order, error) {
	if update.Order_status == "" && update.Payment_status == "" && len(update.Item_updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if update.Order_status != "" && !update.Order_status.Valid() {
		return nil, ErrInvalidStatusValue
	}
	if update.Payment_status != "" && !update.Payment_status.Valid() {
		return nil, ErrInvalidStatusValue
	}
	for _, iu := range update.Item_updates {
		if !iu.Status.Valid() {
			return nil, ErrInvalidStatusValue
		}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		order, err := s.orders.FindByCode(ctx, webID, orderCode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			log.Println("order lookup failed:", err)
			return nil, DependencyError(err)
		}

		switch order.Order_status {
		case models.OrderCancelled:
			return nil, ErrOrderAlreadyCancelled
		case models.OrderCompleted:
			return nil, ErrOrderAlreadyCompleted
		}

		prevOrderStatus := order.Order_status
		prevPaymentStatus := order.Payment_status
		releaseTable := false

		for _, iu := range update.Item_updates {
			line := order.ItemByID(iu.Item_id)
			if line == nil {
				return nil, ErrItemNotFound
			}
			if !line.Item_status.CanTransitionTo(iu.Status) {
				return nil, ErrInvalidTransition
			}
			line.Item_status = iu.Status
		}

		if update.Order_status != "" {
			switch update.Order_status {
			case models.OrderCompleted:
				if order.Payment_status != models.PaymentPaid {
					return nil, ErrPaymentRequired
				}
				order.Order_status = models.OrderCompleted
				releaseTable = true
			case models.OrderCancelled:
				order.Order_status = models.OrderCancelled
				if order.Payment_status != models.PaymentPaid {
					order.Payment_status = models.PaymentCancelled
				}
				releaseTable = true
			default:
				if !order.Order_status.CanTransitionTo(update.Order_status) {
					return nil, ErrInvalidTransition
				}
				order.Order_status = update.Order_status
			}
		}

		if update.Payment_status != "" {
			if !order.Payment_status.CanTransitionTo(update.Payment_status) {
				return nil, ErrInvalidTransition
			}
			switch update.Payment_status {
			case models.PaymentPaid:
				if order.Order_status != models.OrderReady {
					return nil, ErrOrderNotReady
				}
				order.Payment_status = models.PaymentPaid
				order.Order_status = models.OrderCompleted
				for i := range order.Items {
					if order.Items[i].Item_status != models.ItemCancelled {
						order.Items[i].Item_status = models.ItemCompleted
					}
				}
				releaseTable = true
			case models.PaymentCancelled:
				order.Payment_status = models.PaymentCancelled
				order.Order_status = models.OrderCancelled
				releaseTable = true
			default:
				order.Payment_status = update.Payment_status
			}
		}

		now := time.Now()
		order.Total_price = order.TotalOf()
		order.Status_history = append(order.Status_history, models.StatusChange{
			Timestamp:               now,
			Previous_order_status:   &prevOrderStatus,
			New_order_status:        order.Order_status,
			Previous_payment_status: &prevPaymentStatus,
			New_payment_status:      order.Payment_status,
		})
		order.Open = !order.Order_status.Terminal()
		order.Updated_at = now

		if err := s.orders.Update(ctx, order); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			log.Println("order update failed:", err)
			return nil, DependencyError(err)
		}

		if releaseTable && order.Table_id != "" {
			if err := s.tables.SetStatus(ctx, webID, order.Table_id, models.TableAvailable); err != nil {
				// Transition is committed; the table release is retried by
				// the reconcile pass.
				log.Println("table release failed, pending reconciliation:", err)
			}
		}
		return order, nil
	}
	return nil, ErrConflict
}

// ListOrders returns every order in the merchant scope with items grouped
// by status for display.
func (s *OrderService) ListOrders(ctx context.Context, webID int) ([]OrderSummary, error) {
	orders, err := s.orders.FindByWebID(ctx, webID)
	if err != nil {
		log.Println("order listing failed:", err)
		return nil, DependencyError(err)
	}
	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, summarize(order))
	}
	return summaries, nil
}

func summarize(order models.Order) OrderSummary {
	grouped := make(map[models.ItemStatus][]models.OrderItem)
	count := 0
	for _, item := range order.Items {
		grouped[item.Item_status] = append(grouped[item.Item_status], item)
		count += item.Quantity
	}
	return OrderSummary{Order: order, Items_by_status: grouped, Item_count: count}
}

// ActiveOrderForTable resumes a dine-in session: the latest order on the
// table that has not been paid.
func (s *OrderService) ActiveOrderForTable(ctx context.Context, webID int, tableID string) (*OrderSummary, error) {
	order, err := s.orders.FindActiveByTable(ctx, webID, tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Println("active order lookup failed:", err)
		return nil, DependencyError(err)
	}
	summary := summarize(*order)
	return &summary, nil
}

// VerifyOrder fetches one order by its shareable code within the merchant
// scope.
func (s *OrderService) VerifyOrder(ctx context.Context, webID int, orderCode string) (*OrderSummary, error) {
	order, err := s.orders.FindByCode(ctx, webID, orderCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Println("order lookup failed:", err)
		return nil, DependencyError(err)
	}
	summary := summarize(*order)
	return &summary, nil
}

// ReconcileTables is the consistency backstop for occupancy: every table
// must be busy exactly when an open order references it. Returns how many
// tables were corrected.
func (s *OrderService) ReconcileTables(ctx context.Context, webID int) (int, error) {
	tables, err := s.tables.All(ctx, webID)
	if err != nil {
		log.Println("table listing failed:", err)
		return 0, DependencyError(err)
	}
	fixed := 0
	for _, table := range tables {
		hasOpen, err := s.orders.HasOpenOrderForTable(ctx, webID, table.Table_id)
		if err != nil {
			log.Println("open order check failed:", err)
			return fixed, DependencyError(err)
		}
		want := models.TableAvailable
		if hasOpen {
			want = models.TableBusy
		}
		if table.Status == want {
			continue
		}
		if err := s.tables.SetStatus(ctx, webID, table.Table_id, want); err != nil {
			log.Println("table reconcile write failed:", err)
			return fixed, DependencyError(err)
		}
		fixed++
	}
	return fixed, nil
}

// newOrderCode produces the short shareable identifier printed on the
// guest's receipt. The alphabet drops lookalike characters; uniqueness is
// enforced by the store's index, with a retry on collision.
func newOrderCode() string {
	buf := make([]byte, orderCodeLength)
	if _, err := rand.Read(buf); err != nil {
		log.Panic(err)
	}
	for i, b := range buf {
		buf[i] = orderCodeAlphabet[int(b)%len(orderCodeAlphabet)]
	}
	return string(buf)
}
