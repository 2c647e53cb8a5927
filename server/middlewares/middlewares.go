package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/disasterlabs/beacon/model"
	"github.com/disasterlabs/beacon/utils"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/gin-gonic/gin"
)

const (
	userContextKey  = "user"
	userIDHeader    = "X-User-Id"
	defaultIdentity = "citizen1"
)

// identityRegistry is the static identity lookup. There is no credential
// verification: the header value is trusted and resolved to a role.
var identityRegistry = map[string]*model.User{
	"netrunnerX":  {Id: "netrunnerX", Name: "Net Runner", Role: model.RoleAdmin},
	"reliefAdmin": {Id: "reliefAdmin", Name: "Relief Admin", Role: model.RoleAdmin},
	"citizen1":    {Id: "citizen1", Name: "Citizen One", Role: model.RoleContributor},
	"volunteer1":  {Id: "volunteer1", Name: "Volunteer One", Role: model.RoleContributor},
}

// Identity resolves the caller from the X-User-Id header, falling back to
// the default contributor identity when the header is absent. Unknown
// identities are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			userID = defaultIdentity
		}

		user, ok := identityRegistry[userID]
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Unknown user"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by the Identity middleware.
func CurrentUser(c *gin.Context) *model.User {
	if user, ok := c.Get(userContextKey); ok {
		return user.(*model.User)
	}
	return nil
}

// AdminOnly rejects non-admin callers. It must run after Identity.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit enforces a fixed-window per-identity limit backed by Redis.
// The limiter is an optimization like the cache: a nil store or a Redis
// failure degrades to allow.
func RateLimit(store *utils.RedisRateLimitStore, name string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}

		identity := c.GetHeader(userIDHeader)
		if identity == "" {
			identity = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:%s:%s:%d", name, identity, time.Now().Unix()/int64(window.Seconds()))

		count, err := store.Hit(c.Request.Context(), key, window)
		if err != nil {
			Logger.Log.Warnf("rate limit store unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if count > limit {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			c.Abort()
			return
		}
		c.Next()
	}
}
