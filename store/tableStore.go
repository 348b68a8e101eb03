package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"qr-restaurant-backend/database"
	"qr-restaurant-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var tableCollection *mongo.Collection = database.OpenCollection(database.Client, "table")

type TableStore struct{}

func NewTableStore() *TableStore {
	return &TableStore{}
}

func (s *TableStore) Insert(ctx context.Context, table *models.Table) error {
	_, err := tableCollection.InsertOne(ctx, table)
	return err
}

func (s *TableStore) Find(ctx context.Context, webID int, tableID string) (*models.Table, error) {
	var table models.Table
	err := tableCollection.FindOne(ctx, bson.M{"web_id": webID, "table_id": tableID}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (s *TableStore) All(ctx context.Context, webID int) ([]models.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := tableCollection.Find(ctx, bson.M{"web_id": webID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tables []models.Table
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableStore) SetStatus(ctx context.Context, webID int, tableID string, status models.TableStatus) error {
	filter := bson.M{"web_id": webID, "table_id": tableID}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	}}}
	result, err := tableCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TableStore) Update(ctx context.Context, webID int, tableID string, people *string, status models.TableStatus) error {
	var updateObj bson.D
	if people != nil {
		updateObj = append(updateObj, bson.E{Key: "people", Value: people})
	}
	if status != "" {
		updateObj = append(updateObj, bson.E{Key: "status", Value: status})
	}
	updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now()})

	filter := bson.M{"web_id": webID, "table_id": tableID}
	result, err := tableCollection.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TableStore) Delete(ctx context.Context, webID int, tableID string) error {
	result, err := tableCollection.DeleteOne(ctx, bson.M{"web_id": webID, "table_id": tableID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// NextTableID assigns incremental numeric-string ids per merchant, picking
// up after the most recently created table.
func (s *TableStore) NextTableID(ctx context.Context, webID int) (string, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var last models.Table
	err := tableCollection.FindOne(ctx, bson.M{"web_id": webID}, opts).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "1", nil
		}
		return "", err
	}
	lastID, _ := strconv.Atoi(last.Table_id)
	return strconv.Itoa(lastID + 1), nil
}
