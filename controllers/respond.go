package controllers

import (
	"errors"
	"net/http"

	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto real HTTP
// status codes. The body keeps the {success, message} envelope clients
// branch on.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case services.CodeValidation:
		status = http.StatusBadRequest
	case services.CodeNotFound:
		status = http.StatusNotFound
	case services.CodeConflict:
		status = http.StatusConflict
	case services.CodeAuthorization:
		status = http.StatusForbidden
	case services.CodeDependency:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"success": false, "message": svcErr.Message})
}
