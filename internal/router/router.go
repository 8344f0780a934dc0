package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/replydesk-backend/config"
	"github.com/ikkim/replydesk-backend/internal/app/controller"
	"github.com/ikkim/replydesk-backend/internal/middleware"
	"github.com/ikkim/replydesk-backend/internal/monitoring"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

// Headers the analysis function accepts from browser clients.
var functionAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

var functionAllowMethods = []string{http.MethodPost, http.MethodOptions}

type Router struct {
	analysisController *controller.AnalysisController
	businessController *controller.BusinessController
	reviewController   *controller.ReviewController
	templateController *controller.TemplateController
	profileController  *controller.ProfileController
	realtimeController *controller.RealtimeController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	analysisController *controller.AnalysisController,
	businessController *controller.BusinessController,
	reviewController *controller.ReviewController,
	templateController *controller.TemplateController,
	profileController *controller.ProfileController,
	realtimeController *controller.RealtimeController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		analysisController: analysisController,
		businessController: businessController,
		reviewController:   reviewController,
		templateController: templateController,
		profileController:  profileController,
		realtimeController: realtimeController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	if err := middleware.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", err)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(monitoring.PrometheusMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "ReplyDesk API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(monitoring.MetricsHandler()))

	functions := router.Group("/functions/v1")
	functions.Use(functionCORS())
	{
		functions.OPTIONS("/analyze-review", preflight)
		functions.POST("/analyze-review",
			r.authMiddleware.AuthenticateFunction(),
			r.analysisController.AnalyzeReview,
		)
	}

	router.GET("/ws", r.authMiddleware.AuthenticateWebsocket(), r.realtimeController.Connect)

	v1 := router.Group("/api/v1", dashboardCORS(r.config.CORS.AllowedOrigins))
	v1.OPTIONS("/*path", preflight)
	// Same contract as the function endpoint, including its error envelope.
	v1.POST("/ai/analyze-review",
		r.authMiddleware.AuthenticateFunction(),
		r.analysisController.AnalyzeReview,
	)

	api := v1.Group("", r.authMiddleware.Authenticate())
	{

		api.GET("/profile", r.profileController.GetProfile)
		api.PUT("/profile", r.profileController.UpdateProfile)
		api.GET("/subscription", r.profileController.GetSubscription)
		api.GET("/usage", r.profileController.GetUsage)

		businesses := api.Group("/businesses")
		{
			businesses.GET("", r.businessController.ListBusinesses)
			businesses.POST("", r.businessController.CreateBusiness)
			businesses.GET("/:id", r.businessController.GetBusiness)
			businesses.PUT("/:id", r.businessController.UpdateBusiness)

			businesses.GET("/:id/reviews", r.reviewController.ListReviews)
			businesses.POST("/:id/reviews", r.reviewController.CreateReview)
			businesses.GET("/:id/reviews/export", r.reviewController.ExportReviews)
			businesses.POST("/:id/reviews/import", r.reviewController.ImportReviews)
			businesses.GET("/:id/stats", r.reviewController.GetStats)

			businesses.GET("/:id/templates", r.templateController.ListTemplates)
			businesses.POST("/:id/templates", r.templateController.CreateTemplate)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/:id", r.reviewController.GetReview)
			reviews.PATCH("/:id", r.reviewController.UpdateReview)
			reviews.POST("/:id/replies", r.reviewController.CreateReply)
			reviews.POST("/:id/replies/:replyId/approve", r.reviewController.ApproveReply)
		}

		templates := api.Group("/templates")
		{
			templates.PUT("/:id", r.templateController.UpdateTemplate)
			templates.DELETE("/:id", r.templateController.DeleteTemplate)
		}
	}

	return router
}

func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// functionCORS stamps the same CORS headers on every function response,
// with or without an Origin header, and answers preflights with 204.
func functionCORS() gin.HandlerFunc {
	allowHeaders := strings.Join(functionAllowHeaders, ", ")
	allowMethods := strings.Join(functionAllowMethods, ", ")
	maxAge := strconv.Itoa(int((12 * time.Hour).Seconds()))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func dashboardCORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
