package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tarsit/tarsit-api/internal/models"
)

// AuditContext copies the caller's IP and user agent into the request context so
// services can attach them to the audit entries they write.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := models.WithRequestMeta(c.Request.Context(), models.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
