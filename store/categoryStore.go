package store

import (
	"context"
	"errors"

	"qr-restaurant-backend/database"
	"qr-restaurant-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var categoryCollection *mongo.Collection = database.OpenCollection(database.Client, "category")

type CategoryStore struct{}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{}
}

func (s *CategoryStore) Insert(ctx context.Context, category *models.Category) error {
	_, err := categoryCollection.InsertOne(ctx, category)
	return err
}

func (s *CategoryStore) Find(ctx context.Context, webID int, categoryID string) (*models.Category, error) {
	var category models.Category
	err := categoryCollection.FindOne(ctx, bson.M{"web_id": webID, "category_id": categoryID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryStore) All(ctx context.Context, webID int) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := categoryCollection.Find(ctx, bson.M{"web_id": webID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, webID int, categoryID string, updateObj bson.D) error {
	filter := bson.M{"web_id": webID, "category_id": categoryID}
	result, err := categoryCollection.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CategoryStore) Delete(ctx context.Context, webID int, categoryID string) error {
	result, err := categoryCollection.DeleteOne(ctx, bson.M{"web_id": webID, "category_id": categoryID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
