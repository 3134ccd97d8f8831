package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nazsats/blood-report-analyzer-sub000/auth"
	"github.com/nazsats/blood-report-analyzer-sub000/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// maxUploadBytes caps the accepted report image size.
const maxUploadBytes = 10 << 20

// Analyze accepts an uploaded report image and runs the analysis pipeline.
// Validation order: file and media type, then token, then user, then quota;
// each failure short-circuits before any persistence.
func (s *Server) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported media type, expected an image"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	claims, err := s.verifyRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	user, err := s.store.EnsureUser(c.Request.Context(), claims.Subject, claims.Email)
	if err != nil {
		log.WithField("uid", claims.Subject).WithError(err).Error("failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	if !user.MayAnalyze() {
		c.JSON(http.StatusForbidden, gin.H{"error": "free analysis limit reached, upgrade to continue"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	result, err := s.pipeline.Run(ctx, user, fileHeader.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"reportId": result.ReportID,
		"shareUrl": s.shareURL(result.ShareID),
	})
}

// verifyRequest checks the bearer token on a request handled outside the
// auth middleware.
func (s *Server) verifyRequest(c *gin.Context) (*auth.Claims, error) {
	if auth.AuthDisabled() {
		return &auth.Claims{Subject: "local-dev", Email: "local-dev@example.test"}, nil
	}
	if s.verifier == nil {
		return nil, errors.New("auth verifier not configured")
	}
	return s.verifier.VerifyHeader(c.GetHeader("Authorization"))
}

// GetReport returns one of the caller's reports.
func (s *Server) GetReport(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	report, err := s.store.GetReport(c.Request.Context(), c.Param("reportId"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}
	if report.UserID != claims.Subject {
		// Do not leak existence of other users' reports.
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListReports returns the caller's reports, newest first.
func (s *Server) ListReports(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	reports, err := s.store.ListReports(c.Request.Context(), claims.Subject)
	if err != nil {
		log.WithField("uid", claims.Subject).WithError(err).Error("failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(reports),
		"reports": reports,
	})
}

// GetSharedReport returns a report through its share capability. No auth:
// knowledge of the unguessable shareId is the access grant. The owner's
// identity is not exposed.
func (s *Server) GetSharedReport(c *gin.Context) {
	report, err := s.store.GetReportByShareID(c.Request.Context(), c.Param("shareId"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	report.UserID = ""
	c.JSON(http.StatusOK, gin.H{"report": report})
}
