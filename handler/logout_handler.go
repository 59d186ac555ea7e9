package handler

import (
	"fmt"
	"net/http"
	"strings"

	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func LogoutHandler(c *gin.Context, blacklist *services.RedisTokenBlacklist, sessionRepo *repository.SessionRepo) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid token"})
		return
	}

	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	_, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(utils.JWTSecretKey), nil
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid token"})
		return
	}

	refreshToken := c.GetHeader("Refresh-Token")
	if refreshToken == "" {
		utils.BadRequest(c, "Missing refresh token")
		return
	}

	if err := blacklist.BlacklistTokens(accessToken, refreshToken); err != nil {
		utils.TrackError("auth", "blacklist_failed")
		utils.InternalError(c, "Failed to logout")
		return
	}
	utils.TokenUsage.WithLabelValues("access", "revoked").Inc()
	utils.TokenUsage.WithLabelValues("refresh", "revoked").Inc()

	// End the device session if one is attached
	if sessionID, err := c.Cookie("session_id"); err == nil {
		if err := sessionRepo.DeleteSession(sessionID); err != nil {
			utils.TrackError("session", "logout_cleanup")
		}
		c.SetCookie("session_id", "", -1, "/", "", true, true)
	}

	utils.Success(c, gin.H{
		"message": "Successfully logged out",
	})
}
