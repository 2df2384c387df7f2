package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/prolexis/analytics/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
		api.GET("/auth/google/login", handler.GoogleLogin)
		api.GET("/auth/google/callback", handler.GoogleCallback)

		api.GET("/payment/plans", handler.ListPlans)
		api.GET("/payment/checkout/:plan", handler.Checkout)
		api.GET("/payment/success", handler.PaymentSuccess)
	}

	authed := api.Group("")
	authed.Use(authMiddleware(handler.authSvc))
	{
		authed.GET("/auth/profile", handler.Profile)
		authed.POST("/auth/logout", handler.Logout)

		authed.GET("/payment/subscription", handler.SubscriptionStatus)

		authed.POST("/insights/question", handler.AnalyzeQuestion)
		authed.POST("/insights/text", handler.AnalyzeText)
		authed.POST("/insights/url", handler.AnalyzeURL)
		authed.POST("/insights/file", handler.AnalyzeFile)

		authed.GET("/legal/documents", handler.ListDocuments)
		authed.POST("/legal/documents", handler.UploadDocument)
		authed.GET("/legal/documents/:id/download", handler.DownloadDocument)
		authed.DELETE("/legal/documents/:id", handler.DeleteDocument)
		authed.GET("/legal/clients", handler.ListClients)
		authed.POST("/legal/clients", handler.AddClient)
		authed.GET("/legal/time-entries", handler.ListTimeEntries)
		authed.POST("/legal/time-entries", handler.AddTimeEntry)
		authed.GET("/legal/analytics", handler.LegalAnalytics)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
