package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
	"gorm.io/gorm"
)

const (
	dbKey      = "db"
	backendKey = "backend"
)

// CORSMiddleware configures CORS for the portal. With no origins configured any
// origin is allowed but credentials are not; browsers refuse that combination.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", SessionHeader},
		ExposeHeaders: []string{SessionHeader},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// DatabaseMiddleware makes db available to handlers through GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, db)
		c.Next()
	}
}

// GetDB returns the request's database handle, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(dbKey); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return nil
}

// BackendMiddleware makes the OT backend client available through GetBackend.
func BackendMiddleware(client *backend.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(backendKey, client)
		c.Next()
	}
}

// GetBackend returns the request's backend client, or nil.
func GetBackend(c *gin.Context) *backend.Client {
	if v, ok := c.Get(backendKey); ok {
		if client, ok := v.(*backend.Client); ok {
			return client
		}
	}
	return nil
}
