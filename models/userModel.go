package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username *string            `json:"username" validate:"required,min=2,max=100"`
	Password *string            `json:"password" validate:"required,min=6"`
	Email    *string            `json:"email" validate:"email,required"`
	// Web_id is the merchant partition key. Assigned once at signup and
	// carried in every token; all catalog, table and order documents are
	// scoped by it.
	Web_id        int       `json:"web_id"`
	Token         *string   `json:"token"`
	Refresh_Token *string   `json:"refresh_token"`
	Created_at    time.Time `json:"created_at"`
	Updated_at    time.Time `json:"updated_at"`
	User_id       string    `json:"user_id"`
}
