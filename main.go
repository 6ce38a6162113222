// main.go
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/docs"
	"github.com/otscheduler/portal/endpoint"
	"github.com/otscheduler/portal/jobs"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/notify"
	"github.com/otscheduler/portal/util"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title OT Scheduler Portal API
// @version 1.0
// @description Portal in front of the OT scheduling backend.
// @BasePath /
// @securityDefinitions.apikey SessionToken
// @in header
// @name session-token
func main() {
	// Load the configuration
	cfg := config.LoadConfig()
	if cfg.JWTSecret != "" {
		util.SetJWTSecret(cfg.JWTSecret)
	} else {
		log.Println("JWTSECRET is not set; logins will fail until it is configured")
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := db.AutoMigrate(model.MigrationModels...); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, sessions fall back to the database: %v", err)
	}

	if err := util.EnsureGeoIP(context.Background(), cfg.GeoIPDBPath, cfg.GeoIPDBURL); err != nil {
		log.Printf("GeoIP lookups disabled: %v", err)
	}
	defer util.CloseGeoIP()

	util.InitDirectoryCache(cfg.DirectoryCacheTTL)

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)

	if mailer := notify.NewMailer(cfg); mailer.Enabled() {
		endpoint.SetBookingNotifier(mailer)
	}

	sweeper, err := jobs.StartSessionSweeper(db, cfg.SessionSweep)
	if err != nil {
		log.Fatalf("Error scheduling session sweep: %v", err)
	}
	defer sweeper.Stop()

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.BackendMiddleware(client))
	router.Use(middleware.EndpointCallLogger())
	endpoint.RegisterRoutes(router)

	if !cfg.IsProduction() {
		docs.SwaggerInfo.Title = cfg.AppName + " API"
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	log.Printf("%s listening on %s, backend %s", cfg.AppName, address, client.BaseURL())
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
