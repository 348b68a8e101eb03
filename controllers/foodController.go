package controllers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

var foodsStore = store.NewFoodStore()

func GetFoods() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		foods, err := foodsStore.All(ctx, webID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while listing foods"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Foods retrieved successfully",
			"foods":   foods,
		})
	}
}

func GetFood() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		foodID := c.Param("food_id")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		food, err := foodsStore.Find(ctx, webID, foodID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Food not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while fetching food"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Food retrieved successfully",
			"food":    food,
		})
	}
}

func CreateFood() gin.HandlerFunc {
	return func(c *gin.Context) {
		var food models.Food
		if err := c.BindJSON(&food); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&food); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		food.ID = primitive.NewObjectID()
		food.Food_id = food.ID.Hex()
		food.Web_id = webID
		food.Available = true
		price := toFixed(*food.Price, 2)
		food.Price = &price
		food.Created_at = time.Now()
		food.Updated_at = time.Now()

		if err := foodsStore.Insert(ctx, &food); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "food was not created"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Food created successfully",
			"food":    food,
		})
	}
}

func UpdateFood() gin.HandlerFunc {
	return func(c *gin.Context) {
		var food models.Food
		if err := c.BindJSON(&food); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		foodID := c.Param("food_id")

		var updateObj bson.D
		if food.Name != nil {
			updateObj = append(updateObj, bson.E{Key: "name", Value: food.Name})
		}
		if food.Description != nil {
			updateObj = append(updateObj, bson.E{Key: "description", Value: food.Description})
		}
		if food.Price != nil {
			price := toFixed(*food.Price, 2)
			updateObj = append(updateObj, bson.E{Key: "price", Value: price})
		}
		if food.Category_id != nil {
			updateObj = append(updateObj, bson.E{Key: "category_id", Value: food.Category_id})
		}
		if food.Img_url != nil {
			updateObj = append(updateObj, bson.E{Key: "img_url", Value: food.Img_url})
		}
		updateObj = append(updateObj, bson.E{Key: "available", Value: food.Available})
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now()})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		if err := foodsStore.Update(ctx, webID, foodID, updateObj); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Food not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "food update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Food updated successfully"})
	}
}

func DeleteFood() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		foodID := c.Param("food_id")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		if err := foodsStore.Delete(ctx, webID, foodID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Food not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "food delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Food deleted successfully"})
	}
}

func round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func toFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(round(num*output)) / output
}
