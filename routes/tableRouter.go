package routes

import (
	controller "qr-restaurant-backend/controllers"

	"github.com/gin-gonic/gin"
)

func TableRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/tables", controller.GetTables())
	incomingRoutes.POST("/tables", controller.CreateTable())
	incomingRoutes.PATCH("/tables/:table_id", controller.UpdateTable())
	incomingRoutes.DELETE("/tables/:table_id", controller.DeleteTable())
	incomingRoutes.POST("/tables/reconcile", controller.ReconcileTables())
}
