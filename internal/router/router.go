package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/config"
	"github.com/unimatch/unimatch-backend/internal/handler"
	"github.com/unimatch/unimatch-backend/internal/middleware"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Institution *handler.InstitutionHandler
	Analytics   *handler.AnalyticsHandler
	Preference  *handler.PreferenceHandler
	Program     *handler.ProgramHandler
	User        *handler.UserHandler
	FeedWS      *handler.FeedWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Catalog Group (Public) ─────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/institutions", handlers.Institution.List)
		api.GET("/institutions/:id", handlers.Institution.Get)
		api.GET("/programs", handlers.Program.ListPrograms)
		api.GET("/degree-types", handlers.Program.ListDegreeTypes)
	}

	// ─── 2. Preferences Group ──────────────────────────────────────────
	// Reads are open; writes require a token for the same user.
	prefs := router.Group("/api/v1/preferences")
	{
		prefs.GET("/:user_id", handlers.Preference.Get)
		prefs.PUT("/:user_id", middleware.RequireUserJWT(authService), handlers.Preference.Upsert)
	}

	// ─── 3. User Group ─────────────────────────────────────────────────
	users := router.Group("/api/v1/users")
	users.Use(middleware.RequireUserJWT(authService))
	{
		users.GET("/:user_id/likes", handlers.User.ListLikes)
	}

	// ─── 4. Analytics Group (Rate Limited) ─────────────────────────────
	// Reports are cached but a recompute walks the full dataset, so the
	// group gets its own limiter (30 requests per minute per IP).
	analyticsLimiter := middleware.NewRateLimiter(30, time.Minute)
	analytics := router.Group("/api/v1/analytics")
	analytics.Use(analyticsLimiter.Middleware())
	{
		analytics.GET("/top-admission-rates/:limit", handlers.Analytics.TopAdmissionRates)
		analytics.GET("/top-roi-per-cost/:limit", handlers.Analytics.TopROIPerCost)
		analytics.GET("/state-program-roi/:limit", handlers.Analytics.StateProgramROI)
		analytics.GET("/top-earnings-growth/:limit", handlers.Analytics.TopEarningsGrowth)
		analytics.GET("/top-starting-salaries/:limit", handlers.Analytics.TopStartingSalaries)
		analytics.GET("/lowest-roi/:limit", handlers.Analytics.LowestROI)
		analytics.GET("/lowest-salaries/:limit", handlers.Analytics.LowestSalaries)
		analytics.GET("/top-per-state/:limit", handlers.Analytics.TopPerState)
		analytics.GET("/top-per-program/:limit", handlers.Analytics.TopPerProgram)
	}

	// ─── 5. WebSocket Group ────────────────────────────────────────────
	// Token via Authorization header or ?token=; the handler falls back to
	// ?user_id= when neither is sent.
	ws := router.Group("/ws/v1")
	ws.Use(middleware.OptionalUserJWT(authService))
	{
		ws.GET("/feed", handlers.FeedWS.FeedStream)
	}

	return router
}
