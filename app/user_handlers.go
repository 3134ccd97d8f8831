package app

import (
	"net/http"

	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
	"github.com/nazsats/blood-report-analyzer-sub000/auth"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Me returns plan and usage info for the authenticated user.
func (s *Server) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	user, err := s.store.EnsureUser(c.Request.Context(), claims.Subject, claims.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	var remaining any
	if !user.Pro {
		remaining = user.FreeUploadsRemaining()
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":             user.Uid,
		"pro":             user.Pro,
		"plan":            user.Plan,
		"freeUploadsUsed": user.FreeUploadsUsed,
		"remaining":       remaining,
		"freeLimit":       models.FreeUploadLimit,
	})
}
