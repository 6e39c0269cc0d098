package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarsit/tarsit-api/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	cacheHeader     = "X-Cache"
)

// WithResponseMeta initialises the per-request meta map that handlers attach to the envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{"requestedAt": time.Now().UTC()}
		if id := requestid.Value(c); id != "" {
			meta["requestId"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// SetCacheHit flags whether the response was served from cache, in the meta map and the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)["cacheHit"] = hit
	if hit {
		c.Header(cacheHeader, "HIT")
	} else {
		c.Header(cacheHeader, "MISS")
	}
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
