package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// actorID is the user id of the authenticated caller, empty when the route
// runs without the JWT middleware.
func actorID(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return ""
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims.UserID
	}
	return ""
}
