package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/enquiry-api/internal/config"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/internal/presentation/http/handler"
	"github.com/sangkips/enquiry-api/internal/presentation/http/middleware"
	"github.com/sangkips/enquiry-api/pkg/metrics"
	"github.com/sangkips/enquiry-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Visitor   *handler.VisitorHandler
	Enquiry   *handler.EnquiryHandler
	Chat      *handler.ChatHandler
	Content   *handler.ContentHandler
	Dashboard *handler.DashboardHandler
	Admin     *handler.AdminHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
	Store      domainRepo.Store
	Log        *logrus.Logger
	Metrics    *metrics.Metrics
	// IdempotencyRepo is nil when Postgres is not configured
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", health(deps))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		public := v1.Group("")
		public.Use(limiter.Middleware())
		registerPublicRoutes(public, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(limiter.Middleware())
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}))

		registerProtectedRoutes(protected, h)
	}

	return router
}

func health(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.Store == nil {
			c.JSON(http.StatusOK, body)
			return
		}
		body["store"] = deps.Store.Kind()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Store.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func registerPublicRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}

	v1.POST("/public/visitors", h.Visitor.Submit)
	v1.POST("/chat/messages", h.Chat.PostMessage)

	v1.GET("/faqs", h.Content.ListFAQs)
	v1.GET("/faqs/:id", h.Content.GetFAQ)
	v1.GET("/articles", h.Content.ListArticles)
	v1.GET("/articles/:id", h.Content.GetArticle)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/profile", h.Auth.GetProfile)

	registerVisitorRoutes(protected, h)
	registerEnquiryRoutes(protected, h)
	registerDashboardRoutes(protected, h)
	registerUserRoutes(protected, h)
	registerAdminRoutes(protected, h)
}

func registerVisitorRoutes(protected *gin.RouterGroup, h *Handlers) {
	visitors := protected.Group("/visitors")
	{
		visitors.GET("", h.Visitor.List)
		visitors.POST("", h.Visitor.Create)
		visitors.GET("/export", h.Visitor.Export)
		visitors.GET("/:id", h.Visitor.Get)
		visitors.PUT("/:id", h.Visitor.Update)
		visitors.PUT("/:id/assign", h.Visitor.Assign)
		visitors.POST("/:id/reconcile", h.Visitor.Reconcile)
		visitors.PUT("/:id/status", h.Visitor.SetStatus)
		visitors.GET("/:id/history", h.Visitor.History)
		visitors.GET("/:id/messages", h.Visitor.Messages)
	}
}

func registerEnquiryRoutes(protected *gin.RouterGroup, h *Handlers) {
	enquiries := protected.Group("/enquiries")
	{
		enquiries.GET("", h.Enquiry.List)
		enquiries.POST("", h.Enquiry.Create)
		enquiries.GET("/:id", h.Enquiry.Get)
		enquiries.PUT("/:id", h.Enquiry.Update)
		enquiries.PUT("/:id/status", h.Enquiry.SetStatus)
		enquiries.DELETE("/:id", middleware.RequireRole(enum.RoleAdmin), h.Enquiry.Delete)
	}
}

func registerDashboardRoutes(protected *gin.RouterGroup, h *Handlers) {
	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/summary", h.Dashboard.Summary)
		dashboard.GET("/sources", h.Dashboard.Sources)
		dashboard.GET("/trends", h.Dashboard.Trends)
		dashboard.GET("/executives", middleware.RequireRole(enum.RoleAdmin), h.Dashboard.Executives)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequireRole(enum.RoleAdmin))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
		users.GET("/:id/services", h.User.GetServices)
		users.PUT("/:id/services", h.User.SetServices)
	}
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(enum.RoleAdmin))
	{
		admin.POST("/reconcile", h.Admin.Reconcile)
		admin.POST("/faq-index", h.Admin.RebuildIndex)

		admin.GET("/faqs", h.Content.ListFAQs)
		admin.POST("/faqs", h.Content.CreateFAQ)
		admin.GET("/faqs/:id", h.Content.GetFAQ)
		admin.PUT("/faqs/:id", h.Content.UpdateFAQ)
		admin.DELETE("/faqs/:id", h.Content.DeleteFAQ)

		admin.GET("/articles", h.Content.ListArticles)
		admin.POST("/articles", h.Content.CreateArticle)
		admin.GET("/articles/:id", h.Content.GetArticle)
		admin.PUT("/articles/:id", h.Content.UpdateArticle)
		admin.DELETE("/articles/:id", h.Content.DeleteArticle)
	}
}
