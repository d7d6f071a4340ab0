package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/warterbili/InterviewManager-system/internal/api/handlers"
	"github.com/warterbili/InterviewManager-system/internal/config"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// The tracker front-end is served from a different origin.
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	store := services.NewEmailStore(db)
	mail := services.NewMailService(cfg.Email)
	emailHandler := handlers.NewEmailHandler(store, mail)
	trackerHandler := handlers.NewTrackerHandler(services.NewTrackerStore(db))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/emails", emailHandler.ListEmails)
		api.GET("/emails/search", emailHandler.SearchEmails)
		api.GET("/emails/:id", emailHandler.GetEmail)
		api.GET("/emails/:id/body", emailHandler.GetEmailBody)
		api.DELETE("/emails/:id", emailHandler.DeleteEmail)
		api.POST("/fetch-emails", emailHandler.TriggerFetch)
		api.GET("/stats", emailHandler.GetStats)

		api.GET("/interviews", trackerHandler.ListInterviews)
		api.POST("/interviews", trackerHandler.SaveInterviews)

		api.GET("/deliveries", trackerHandler.ListDeliveries)
		api.POST("/deliveries", trackerHandler.AddDelivery)
		api.PUT("/deliveries/:id", trackerHandler.UpdateDelivery)
		api.DELETE("/deliveries/:id", trackerHandler.DeleteDelivery)
	}

	return router
}
