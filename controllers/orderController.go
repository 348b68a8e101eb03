package controllers

import (
	"context"
	"net/http"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/services"
	"qr-restaurant-backend/store"

	"github.com/gin-gonic/gin"
)

// OrderLifecycle is what the order handlers need from the service layer.
type OrderLifecycle interface {
	PlaceOrder(ctx context.Context, webID int, tableID string, items []services.PlacedItem) (*models.Order, error)
	UpdateStatus(ctx context.Context, webID int, orderCode string, update services.StatusUpdate) (*models.Order, error)
	ListOrders(ctx context.Context, webID int) ([]services.OrderSummary, error)
	ActiveOrderForTable(ctx context.Context, webID int, tableID string) (*services.OrderSummary, error)
	VerifyOrder(ctx context.Context, webID int, orderCode string) (*services.OrderSummary, error)
	ReconcileTables(ctx context.Context, webID int) (int, error)
}

var orderService OrderLifecycle = services.NewOrderService(store.NewOrderStore(), store.NewTableStore(), store.NewFoodStore())

type placeOrderRequest struct {
	Username string                `json:"username"`
	Table_id string                `json:"tableId"`
	Items    []services.PlacedItem `json:"items" validate:"required,min=1,dive"`
}

type statusUpdateRequest struct {
	Order_code     string                `json:"orderCode" validate:"required"`
	Order_status   models.OrderStatus    `json:"orderStatus"`
	Payment_status models.PaymentStatus  `json:"paymentStatus"`
	Item_updates   []services.ItemUpdate `json:"itemUpdates"`
}

type tableOrderRequest struct {
	Table_id string `json:"tableId" validate:"required"`
}

type verifyOrderRequest struct {
	Order_code string `json:"orderCode" validate:"required"`
}

// resolveWebID prefers the merchant scope carried by the caller's token.
// A username in the body is only consulted when the token has no scope,
// so a client can never write into another merchant's partition.
func resolveWebID(c *gin.Context, username string) (int, bool) {
	if v, ok := c.Get("web_id"); ok {
		if webID, ok := v.(int); ok && webID > 0 {
			return webID, true
		}
	}
	if username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		webID, err := usersStore.ResolveWebID(ctx, username)
		if err == nil {
			return webID, true
		}
	}
	return 0, false
}

func PlaceOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req placeOrderRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		webID, ok := resolveWebID(c, req.Username)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		order, err := orderService.PlaceOrder(ctx, webID, req.Table_id, req.Items)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		notifyClients("newOrder", order)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order placed successfully",
			"order":   order,
		})
	}
}

func GetOrdersByWebID() gin.HandlerFunc {
	return func(c *gin.Context) {
		webID, ok := resolveWebID(c, "")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "merchant scope could not be resolved"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		orders, err := orderService.ListOrders(ctx, webID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		message := "Orders retrieved successfully"
		if len(orders) == 0 {
			message = "No orders found"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": message,
			"orders":  orders,
		})
	}
}

func GetCurrentOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tableOrderRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
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

		order, err := orderService.ActiveOrderForTable(ctx, webID, req.Table_id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Active order retrieved successfully",
			"order":   order,
		})
	}
}

func UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusUpdateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
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

		order, err := orderService.UpdateStatus(ctx, webID, req.Order_code, services.StatusUpdate{
			Order_status:   req.Order_status,
			Payment_status: req.Payment_status,
			Item_updates:   req.Item_updates,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		notifyClients("statusChanged", order)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order updated successfully",
			"order":   order,
		})
	}
}

func VerifyOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOrderRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
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

		order, err := orderService.VerifyOrder(ctx, webID, req.Order_code)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order verified",
			"order":   order,
		})
	}
}
