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

var foodCollection *mongo.Collection = database.OpenCollection(database.Client, "food")

type FoodStore struct{}

func NewFoodStore() *FoodStore {
	return &FoodStore{}
}

func (s *FoodStore) Insert(ctx context.Context, food *models.Food) error {
	_, err := foodCollection.InsertOne(ctx, food)
	return err
}

func (s *FoodStore) Find(ctx context.Context, webID int, foodID string) (*models.Food, error) {
	var food models.Food
	err := foodCollection.FindOne(ctx, bson.M{"web_id": webID, "food_id": foodID}).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &food, nil
}

func (s *FoodStore) All(ctx context.Context, webID int) ([]models.Food, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := foodCollection.Find(ctx, bson.M{"web_id": webID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var foods []models.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// FindByIDs resolves a batch of food ids within one merchant scope. Ids
// that do not exist under the scope are simply absent from the result;
// the caller decides whether that is an error.
func (s *FoodStore) FindByIDs(ctx context.Context, webID int, foodIDs []string) (map[string]models.Food, error) {
	filter := bson.M{"web_id": webID, "food_id": bson.M{"$in": foodIDs}}
	cursor, err := foodCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	foods := make(map[string]models.Food)
	for cursor.Next(ctx) {
		var food models.Food
		if err := cursor.Decode(&food); err != nil {
			return nil, err
		}
		foods[food.Food_id] = food
	}
	return foods, cursor.Err()
}

func (s *FoodStore) Update(ctx context.Context, webID int, foodID string, updateObj bson.D) error {
	filter := bson.M{"web_id": webID, "food_id": foodID}
	result, err := foodCollection.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FoodStore) Delete(ctx context.Context, webID int, foodID string) error {
	result, err := foodCollection.DeleteOne(ctx, bson.M{"web_id": webID, "food_id": foodID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
