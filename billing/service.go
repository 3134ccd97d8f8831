package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
	"github.com/nazsats/blood-report-analyzer-sub000/store"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidSignature means the client-supplied payment signature did not
	// match the recomputed HMAC.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrSubscriptionNotActive means the gateway does not report the
	// subscription as paid-up.
	ErrSubscriptionNotActive = errors.New("subscription not active")
	// ErrUserMismatch means the subscription belongs to a different user than
	// the authenticated caller.
	ErrUserMismatch = errors.New("subscription does not belong to user")
)

// activeStatuses are the gateway states accepted as proof of a current
// subscription.
var activeStatuses = map[string]bool{
	"active":        true,
	"authenticated": true,
}

// Service drives the three-phase subscription activation handshake.
type Service struct {
	gateway Gateway
	store   store.Store
	secret  string
}

func NewService(gateway Gateway, st store.Store, secret string) *Service {
	return &Service{gateway: gateway, store: st, secret: secret}
}

// Create opens a subscription intent for the authenticated user.
func (s *Service) Create(ctx context.Context, uid, planID, planName string) (string, error) {
	subID, err := s.gateway.CreateSubscription(ctx, planID, uid, planName)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"uid": uid, "subscriptionId": subID, "plan": planID}).Info("subscription created")
	return subID, nil
}

// Activate verifies a client-reported payment and upgrades the user. The
// three gates are all required: the signature proves payment integrity, the
// status lookup proves currency, and the notes cross-check binds identity.
// Nothing is written unless every gate passes.
func (s *Service) Activate(ctx context.Context, uid, subscriptionID, paymentID, signature string) error {
	if !VerifySignature(paymentID, subscriptionID, signature, s.secret) {
		return ErrInvalidSignature
	}

	sub, err := s.gateway.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("verify subscription: %w", err)
	}
	if !activeStatuses[sub.Status] {
		return fmt.Errorf("%w: status %q", ErrSubscriptionNotActive, sub.Status)
	}
	if sub.UserID != uid {
		return ErrUserMismatch
	}

	plan := models.Plan(sub.PlanName)
	if plan == "" {
		plan = models.PlanPro
	}
	if err := s.store.ActivateSubscription(ctx, uid, plan, subscriptionID); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	log.WithFields(log.Fields{"uid": uid, "subscriptionId": subscriptionID}).Info("subscription activated")
	return nil
}

// IsActive reports whether the user currently holds the pro entitlement.
func (s *Service) IsActive(ctx context.Context, uid string) (bool, error) {
	user, err := s.store.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Pro, nil
}
