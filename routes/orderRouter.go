package routes

import (
	"qr-restaurant-backend/controllers"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/order", controllers.PlaceOrder())
	incomingRoutes.POST("/getorder", controllers.GetOrdersByWebID())
	incomingRoutes.POST("/getcurrentorder", controllers.GetCurrentOrder())
	incomingRoutes.POST("/verifyorder", controllers.VerifyOrder())
	incomingRoutes.POST("/order/status", controllers.UpdateOrderStatus())
	// legacy path kept for older clients
	incomingRoutes.POST("/payment-status", controllers.UpdateOrderStatus())
}
