package app

import (
	"time"

	"github.com/nazsats/blood-report-analyzer-sub000/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router builds the HTTP router. The analyze and chat endpoints sit outside
// the auth middleware: analyze orders its own validation (file first, then
// token), and chat is deliberately unauthenticated.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", s.Health)
	router.POST("/api/analyze", s.Analyze)
	router.POST("/api/chat", s.Chat)
	router.GET("/api/share/:shareId", s.GetSharedReport)

	protected := router.Group("/")
	protected.Use(auth.Middleware(s.verifier, auth.MiddlewareConfig{
		OnAuthenticated: func(c *gin.Context, claims *auth.Claims) error {
			_, err := s.store.EnsureUser(c.Request.Context(), claims.Subject, claims.Email)
			return err
		},
	}))
	protected.GET("/me", s.Me)
	protected.GET("/api/reports", s.ListReports)
	protected.GET("/api/reports/:reportId", s.GetReport)
	protected.POST("/api/subscription/create", s.CreateSubscription)
	protected.POST("/api/subscription/activate", s.ActivateSubscription)
	protected.POST("/api/subscription/status", s.CheckSubscription)

	return router
}
