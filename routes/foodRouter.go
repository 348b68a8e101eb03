package routes

import (
	controller "qr-restaurant-backend/controllers"

	"github.com/gin-gonic/gin"
)

func FoodRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/foods", controller.GetFoods())
	incomingRoutes.GET("/foods/:food_id", controller.GetFood())
	incomingRoutes.POST("/foods", controller.CreateFood())
	incomingRoutes.PATCH("/foods/:food_id", controller.UpdateFood())
	incomingRoutes.DELETE("/foods/:food_id", controller.DeleteFood())
}

func CategoryRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/categories", controller.GetCategories())
	incomingRoutes.POST("/categories", controller.CreateCategory())
	incomingRoutes.PATCH("/categories/:category_id", controller.UpdateCategory())
	incomingRoutes.DELETE("/categories/:category_id", controller.DeleteCategory())
}
