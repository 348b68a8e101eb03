package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Category_id string             `json:"category_id"`
	Web_id      int                `json:"web_id"`
	Name        *string            `json:"name" validate:"required,min=2,max=100"`
	Created_at  time.Time          `json:"created_at"`
	Updated_at  time.Time          `json:"updated_at"`
}
