package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func DBinstance() *mongo.Client {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, relying on environment")
	}

	MongoDb := os.Getenv("MONGO_URI")
	if MongoDb == "" {
		MongoDb = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(MongoDb))
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to MongoDB")
	return client
}

var Client *mongo.Client = DBinstance()

func OpenCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	databaseName := os.Getenv("MONGO_DATABASE")
	if databaseName == "" {
		databaseName = "restaurant"
	}
	return client.Database(databaseName).Collection(collectionName)
}

// EnsureOrderIndexes creates the indexes the order store depends on:
// a globally unique order code, and a partial unique index that admits
// at most one open order per (web_id, table_id). The second index is
// what turns a concurrent double-create into a retriable duplicate-key
// error instead of two open orders for the same table.
func EnsureOrderIndexes(ctx context.Context, client *mongo.Client) error {
	orderCollection := OpenCollection(client, "order")
	_, err := orderCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("order_code_unique"),
		},
		{
			Keys: bson.D{{Key: "web_id", Value: 1}, {Key: "table_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("open_order_per_table").
				SetPartialFilterExpression(bson.D{
					{Key: "open", Value: true},
					{Key: "table_id", Value: bson.D{{Key: "$gt", Value: ""}}},
				}),
		},
	})
	return err
}
