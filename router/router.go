package router

import (
	"time"

	"github.com/NomadCrew/feedback-desk/config"
	"github.com/NomadCrew/feedback-desk/handlers"
	"github.com/NomadCrew/feedback-desk/internal/websocket"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config *config.Config
	// JWTValidator may be nil, which leaves staff routes open.
	JWTValidator    middleware.Validator
	FeedbackHandler *handlers.FeedbackHandler
	HealthHandler   *handlers.HealthHandler
	EventStream     *websocket.Handler
	// RedisClient backs the submission rate limiter; nil disables it.
	RedisClient redis.Cmdable
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// gin trusts every proxy by default; only configured ones may set the
	// client IP through X-Forwarded-For.
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		logger.GetLogger().Errorw("Invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		feedback := v1.Group("/feedback")

		submit := []gin.HandlerFunc{}
		if deps.RedisClient != nil {
			submit = append(submit, middleware.SubmissionRateLimiter(
				deps.RedisClient,
				deps.Config.RateLimit.SubmitRequestsPerMinute,
				time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
			))
		}
		submit = append(submit, deps.FeedbackHandler.SubmitFeedback)
		feedback.POST("", submit...)

		staff := feedback.Group("")
		staff.Use(middleware.StaffAuth(deps.JWTValidator))
		{
			staff.GET("", deps.FeedbackHandler.ListFeedback)
			staff.GET("/stats", deps.FeedbackHandler.GetStats)
			if deps.EventStream != nil {
				staff.GET("/events", deps.EventStream.HandleWebSocket)
			}
			staff.GET("/:id", deps.FeedbackHandler.GetFeedback)
			staff.PATCH("/:id/status", deps.FeedbackHandler.UpdateStatus)
			staff.DELETE("/:id", deps.FeedbackHandler.DeleteFeedback)
		}
	}

	return r
}
