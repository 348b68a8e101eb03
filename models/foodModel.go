package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Food struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Food_id     string             `json:"food_id"`
	Web_id      int                `json:"web_id"`
	Name        *string            `json:"name" validate:"required,min=2,max=100"`
	Description *string            `json:"description"`
	Price       *float64           `json:"price" validate:"required,gt=0"`
	Category_id *string            `json:"category_id" validate:"required"`
	Img_url     *string            `json:"img_url"`
	Available   bool               `json:"available"`
	Created_at  time.Time          `json:"created_at"`
	Updated_at  time.Time          `json:"updated_at"`
}
