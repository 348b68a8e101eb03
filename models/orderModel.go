package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemReady     ItemStatus = "ready"
	ItemCompleted ItemStatus = "completed"
	ItemCancelled ItemStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderCompleted, OrderCancelled},
}

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending: {ItemReady, ItemCancelled},
	ItemReady:   {ItemCompleted, ItemCancelled},
}

// paid is terminal; a failed charge may be retried or abandoned.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed, PaymentCancelled},
	PaymentFailed:  {PaymentPaid, PaymentCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemReady, ItemCompleted, ItemCancelled:
		return true
	}
	return false
}

func (s ItemStatus) Terminal() bool {
	return s == ItemCompleted || s == ItemCancelled
}

func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentCancelled
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	Item_id     string     `json:"item_id"`
	Food_id     string     `json:"food_id" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	Unit_price  float64    `json:"unit_price"`
	Item_status ItemStatus `json:"item_status"`
	Added_at    time.Time  `json:"added_at"`
}

// StatusChange records one accepted transition. Previous_* fields are nil
// only on the seed entry written when the order is created. The history is
// append-only; entries are never rewritten.
type StatusChange struct {
	Timestamp               time.Time      `json:"timestamp"`
	Previous_order_status   *OrderStatus   `json:"previous_order_status"`
	New_order_status        OrderStatus    `json:"new_order_status"`
	Previous_payment_status *PaymentStatus `json:"previous_payment_status"`
	New_payment_status      PaymentStatus  `json:"new_payment_status"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Order_code     string             `json:"order_code"`
	Web_id         int                `json:"web_id"`
	Table_id       string             `json:"table_id"`
	Items          []OrderItem        `json:"items"`
	Total_price    float64            `json:"total_price"`
	Order_status   OrderStatus        `json:"order_status"`
	Payment_status PaymentStatus      `json:"payment_status"`
	Status_history []StatusChange     `json:"status_history"`
	// Open mirrors "order status is not terminal". It exists so the store
	// can hang a partial unique index off it; the service keeps it in sync.
	Open       bool      `json:"open"`
	Version    int64     `json:"version"`
	Created_at time.Time `json:"created_at"`
	Updated_at time.Time `json:"updated_at"`
}

// TotalOf sums quantity times unit price over every line that has not been
// cancelled. Total_price on the document is a cache of this value.
func (o *Order) TotalOf() float64 {
	var total float64
	for _, item := range o.Items {
		if item.Item_status == ItemCancelled {
			continue
		}
		total += float64(item.Quantity) * item.Unit_price
	}
	return total
}

// ItemByID returns a pointer into Items, or nil.
func (o *Order) ItemByID(itemID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].Item_id == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
