package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"qr-restaurant-backend/helpers"
	"qr-restaurant-backend/models"
	"qr-restaurant-backend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var usersStore = store.NewUserStore()

func SignUp() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.BindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := validate.Struct(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		count, err := usersStore.CountByEmailOrUsername(ctx, *user.Email, *user.Username)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while checking for the user"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "User already exists"})
			return
		}

		password := HashPassword(*user.Password)
		user.Password = &password

		// webID partitions everything this merchant owns. Incremental, like
		// the table ids: count existing merchants and take the next slot.
		total, err := usersStore.CountUsers(ctx)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while assigning merchant id"})
			return
		}
		user.Web_id = int(total) + 1
		user.ID = primitive.NewObjectID()
		user.User_id = user.ID.Hex()
		user.Created_at = time.Now()
		user.Updated_at = time.Now()

		token, refreshToken, err := helpers.GenerateAllTokens(*user.Email, *user.Username, user.User_id, user.Web_id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token generation failed"})
			return
		}
		user.Token = &token
		user.Refresh_Token = &refreshToken

		if err := usersStore.Insert(ctx, &user); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "user was not created"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User registered successfully",
			"user": gin.H{
				"username":   user.Username,
				"token":      token,
				"web_id":     user.Web_id,
				"created_at": user.Created_at,
			},
		})
	}
}

func Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.BindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if user.Email == nil || user.Password == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		foundUser, err := usersStore.FindByEmail(ctx, *user.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "email or password is incorrect"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "error occurred while fetching the user"})
			return
		}

		passwordIsValid, msg := VerifyPassword(*user.Password, *foundUser.Password)
		if !passwordIsValid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
			return
		}

		token, refreshToken, err := helpers.GenerateAllTokens(*foundUser.Email, *foundUser.Username, foundUser.User_id, foundUser.Web_id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token generation failed"})
			return
		}
		if err := usersStore.UpdateTokens(ctx, foundUser.User_id, token, refreshToken); err != nil {
			log.Println("token persistence failed:", err)
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Login successful",
			"user": gin.H{
				"username": foundUser.Username,
				"token":    token,
				"web_id":   foundUser.Web_id,
			},
		})
	}
}

func HashPassword(password string) string {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		log.Panic(err)
	}
	return string(bytes)
}

func VerifyPassword(userPassword string, providePassword string) (bool, string) {
	err := bcrypt.CompareHashAndPassword([]byte(providePassword), []byte(userPassword))
	check := true
	msg := ""
	if err != nil {
		msg = fmt.Sprintf("email or password is incorrect")
		check = false
	}
	return check, msg
}
