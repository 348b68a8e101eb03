package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/services"
	"qr-restaurant-backend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var tablesStore = store.NewTableStore()
var ordersStore = store.NewOrderStore()

type createTableRequest struct {
	People *string `json:"people"`
}

type updateTableRequest struct {
	People *string            `json:"people"`
	Status models.TableStatus `json:"status"`
}

func GetTables() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		tables, err := tablesStore.All(ctx, webID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while listing tables"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Tables fetched successfully",
			"tables":  tables,
		})
	}
}

func CreateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTableRequest
		if err := c.BindJSON(&req); err != nil {
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

		tableID, err := tablesStore.NextTableID(ctx, webID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "table was not created"})
			return
		}

		table := models.Table{
			ID:         primitive.NewObjectID(),
			Table_id:   tableID,
			Web_id:     webID,
			Status:     models.TableAvailable,
			People:     req.People,
			Created_at: time.Now(),
			Updated_at: time.Now(),
		}
		if err := tablesStore.Insert(ctx, &table); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "table was not created"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Table created successfully",
			"table":   table,
		})
	}
}

func UpdateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateTableRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if req.Status != "" && req.Status != models.TableAvailable && req.Status != models.TableBusy {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status value outside the allowed set"})
			return
		}
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		tableID := c.Param("table_id")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		if err := tablesStore.Update(ctx, webID, tableID, req.People, req.Status); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Table not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "table update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Table updated successfully"})
	}
}

// DeleteTable refuses to remove a table that still has an open order; the
// order has to reach a terminal state first.
func DeleteTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}
		tableID := c.Param("table_id")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		hasOpen, err := ordersStore.HasOpenOrderForTable(ctx, webID, tableID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "table delete failed"})
			return
		}
		if hasOpen {
			respondServiceError(c, services.ErrTableOccupied)
			return
		}

		if err := tablesStore.Delete(ctx, webID, tableID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Table not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "table delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Table deleted successfully"})
	}
}

// ReconcileTables forces table occupancy back in line with the order
// store. Kept off the hot path; an admin or a cron hits this endpoint.
func ReconcileTables() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		fixed, err := orderService.ReconcileTables(ctx, webID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Tables reconciled",
			"fixed":   fixed,
		})
	}
}
