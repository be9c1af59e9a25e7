package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop_back_end/internal/utils"
)

// AuthRequired protège une route : exige un header "Authorization: Bearer <token>"
// et met user_id / email dans le context Gin pour les handlers suivants.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		userID, email, err := utils.ParseJWT(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide ou expiré", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		// ✅ Mettre les claims dans le context Gin
		c.Set("user_id", userID)
		c.Set("email", email)

		c.Next()
	}
}

// CurrentUserID récupère l'identifiant mis en context par AuthRequired
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
