package store

import (
	"context"
	"errors"
	"time"

	"qr-restaurant-backend/database"
	"qr-restaurant-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var userCollection *mongo.Collection = database.OpenCollection(database.Client, "user")

type UserStore struct{}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := userCollection.InsertOne(ctx, user)
	return err
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CountByEmailOrUsername(ctx context.Context, email string, username string) (int64, error) {
	return userCollection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	})
}

func (s *UserStore) CountUsers(ctx context.Context) (int64, error) {
	return userCollection.CountDocuments(ctx, bson.M{})
}

func (s *UserStore) UpdateTokens(ctx context.Context, userID string, token string, refreshToken string) error {
	filter := bson.M{"user_id": userID}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "token", Value: token},
		{Key: "refresh_token", Value: refreshToken},
		{Key: "updated_at", Value: time.Now()},
	}}}
	_, err := userCollection.UpdateOne(ctx, filter, update)
	return err
}

// ResolveWebID maps a username to its merchant partition key.
func (s *UserStore) ResolveWebID(ctx context.Context, username string) (int, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.Web_id, nil
}
