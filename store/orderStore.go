package store

import (
	"context"
	"errors"
	"strings"

	"qr-restaurant-backend/database"
	"qr-restaurant-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var orderCollection *mongo.Collection = database.OpenCollection(database.Client, "order")

type OrderStore struct{}

func NewOrderStore() *OrderStore {
	return &OrderStore{}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	_, err := orderCollection.InsertOne(ctx, order)
	if err != nil {
		if isDuplicateOn(err, "open_order_per_table") {
			return ErrDuplicateOpenOrder
		}
		if isDuplicateOn(err, "order_code_unique") {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (s *OrderStore) FindByCode(ctx context.Context, webID int, orderCode string) (*models.Order, error) {
	var order models.Order
	err := orderCollection.FindOne(ctx, bson.M{"order_code": orderCode, "web_id": webID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) FindOpenByTable(ctx context.Context, webID int, tableID string) (*models.Order, error) {
	var order models.Order
	filter := bson.M{"web_id": webID, "table_id": tableID, "open": true}
	err := orderCollection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) FindByWebID(ctx context.Context, webID int) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := orderCollection.Find(ctx, bson.M{"web_id": webID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindActiveByTable returns the most recent order for the table whose
// payment has not gone through.
func (s *OrderStore) FindActiveByTable(ctx context.Context, webID int, tableID string) (*models.Order, error) {
	filter := bson.M{
		"web_id":         webID,
		"table_id":       tableID,
		"payment_status": bson.M{"$ne": models.PaymentPaid},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var order models.Order
	err := orderCollection.FindOne(ctx, filter, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Update replaces the stored document only if the version token still
// matches, bumping the version on the way in. A miss means somebody else
// wrote first; callers re-read and retry.
func (s *OrderStore) Update(ctx context.Context, order *models.Order) error {
	replacement := *order
	replacement.Version = order.Version + 1

	filter := bson.M{
		"order_code": order.Order_code,
		"web_id":     order.Web_id,
		"version":    order.Version,
	}
	result, err := orderCollection.ReplaceOne(ctx, filter, &replacement)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	order.Version = replacement.Version
	return nil
}

func (s *OrderStore) HasOpenOrderForTable(ctx context.Context, webID int, tableID string) (bool, error) {
	count, err := orderCollection.CountDocuments(ctx, bson.M{
		"web_id":   webID,
		"table_id": tableID,
		"open":     true,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func isDuplicateOn(err error, indexName string) bool {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == 11000 && strings.Contains(we.Message, indexName) {
				return true
			}
		}
	}
	return false
}
