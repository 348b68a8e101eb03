package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableBusy      TableStatus = "busy"
)

type Table struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Table_id   string             `json:"table_id"`
	Web_id     int                `json:"web_id"`
	Status     TableStatus        `json:"status"`
	People     *string            `json:"people"`
	Created_at time.Time          `json:"created_at"`
	Updated_at time.Time          `json:"updated_at"`
}
