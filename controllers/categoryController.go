package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var categoriesStore = store.NewCategoryStore()

func GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		categories, err := categoriesStore.All(ctx, webID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while listing categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Categories retrieved successfully",
			"categories": categories,
		})
	}
}

func CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := c.BindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&category); err != nil {
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

		category.ID = primitive.NewObjectID()
		category.Category_id = category.ID.Hex()
		category.Web_id = webID
		category.Created_at = time.Now()
		category.Updated_at = time.Now()

		if err := categoriesStore.Insert(ctx, &category); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "category was not created"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Category created successfully",
			"category": category,
		})
	}
}

func UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := c.BindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		categoryID := c.Param("category_id")

		var updateObj bson.D
		if category.Name != nil {
			updateObj = append(updateObj, bson.E{Key: "name", Value: category.Name})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now()})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		if err := categoriesStore.Update(ctx, webID, categoryID, updateObj); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "category update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category updated successfully"})
	}
}

func DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		categoryID := c.Param("category_id")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		if err := categoriesStore.Delete(ctx, webID, categoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "category delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
	}
}
