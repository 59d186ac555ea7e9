package handler

import (
	"errors"

	"main/model"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func RegistrationHandler(c *gin.Context, userService *usecase.UserService) {
	var input model.User

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	user, err := userService.CreateUser(c, &input)
	if err != nil {
		if errors.Is(err, usecase.ErrUsernameTaken) {
			utils.Conflict(c, "username already exists")
			return
		}
		utils.BadRequest(c, "invalid request")
		return
	}

	token, err := services.GenerateToken(user.UserID, user.Email)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	refreshToken, err := services.GenerateRefreshToken(user.UserID, user.Email)
	if err != nil {
		utils.InternalError(c, "failed to generate refresh token")
		return
	}

	utils.Created(c, gin.H{
		"message": "user registered successfully",
		"token":   token,
		"refresh": refreshToken,
	})
}
