package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tarsit/tarsit-api/internal/middleware"
	"github.com/tarsit/tarsit-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func optionalQuery(c *gin.Context, key string) *string {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return nil
	}
	return &value
}
