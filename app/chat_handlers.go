package app

import (
	"net/http"

	"github.com/nazsats/blood-report-analyzer-sub000/ai"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type chatRequest struct {
	ReportID string       `json:"reportId"`
	Messages []ai.Message `json:"messages"`
}

// Chat answers a follow-up question grounded in a stored report. Errors
// collapse to a single 500; a missing report is not an error, the assistant
// just answers without context.
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid request"})
		return
	}

	reply, err := s.assistant.Reply(c.Request.Context(), req.ReportID, req.Messages)
	if err != nil {
		log.WithField("reportId", req.ReportID).WithError(err).Error("chat reply failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}
