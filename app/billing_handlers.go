package app

import (
	"errors"
	"net/http"

	"github.com/nazsats/blood-report-analyzer-sub000/auth"
	"github.com/nazsats/blood-report-analyzer-sub000/billing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type createSubscriptionRequest struct {
	PlanID   string `json:"planId"`
	PlanName string `json:"planName"`
}

// CreateSubscription opens a subscription intent for the authenticated user.
func (s *Server) CreateSubscription(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PlanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing plan id"})
		return
	}

	subscriptionID, err := s.billing.Create(c.Request.Context(), claims.Subject, req.PlanID, req.PlanName)
	if err != nil {
		// Echo the offending plan id for operator debugging.
		log.WithFields(log.Fields{"uid": claims.Subject, "plan": req.PlanID}).WithError(err).Error("create subscription failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create subscription for plan " + req.PlanID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptionId": subscriptionID})
}

type activateSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
}

// ActivateSubscription verifies a client-reported payment and upgrades the
// user's entitlement.
func (s *Server) ActivateSubscription(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req activateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SubscriptionID == "" || req.PaymentID == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payment details"})
		return
	}

	err := s.billing.Activate(c.Request.Context(), claims.Subject, req.SubscriptionID, req.PaymentID, req.Signature)
	switch {
	case errors.Is(err, billing.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment signature"})
	case errors.Is(err, billing.ErrSubscriptionNotActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription is not active"})
	case errors.Is(err, billing.ErrUserMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "subscription does not belong to this user"})
	case err != nil:
		log.WithFields(log.Fields{"uid": claims.Subject, "subscriptionId": req.SubscriptionID}).WithError(err).Error("activation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate subscription"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

type checkSubscriptionRequest struct {
	Uid string `json:"uid"`
}

// CheckSubscription reports whether the pro entitlement is active.
func (s *Server) CheckSubscription(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req checkSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Uid == "" {
		req.Uid = claims.Subject
	}

	active, err := s.billing.IsActive(c.Request.Context(), req.Uid)
	if err != nil {
		log.WithField("uid", req.Uid).WithError(err).Error("subscription status lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": active})
}
