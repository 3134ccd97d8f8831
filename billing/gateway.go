// Package billing implements the subscription activation handshake against
// the payment gateway.
package billing

import (
	"context"
	"fmt"

	"github.com/nazsats/blood-report-analyzer-sub000/app/config"

	razorpay "github.com/razorpay/razorpay-go"
)

// Subscription is the gateway's view of one recurring subscription.
type Subscription struct {
	ID       string
	Status   string
	PlanID   string
	UserID   string
	PlanName string
}

// Gateway is the payment-gateway contract. Calls are single blocking round
// trips; failures are terminal for the current request.
type Gateway interface {
	// CreateSubscription opens a subscription intent tagged with the user id
	// and plan name so activation can cross-check identity later.
	CreateSubscription(ctx context.Context, planID, uid, planName string) (string, error)
	FetchSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
}

// RazorpayGateway implements Gateway on the Razorpay SDK.
type RazorpayGateway struct {
	client     *razorpay.Client
	totalCount int
}

func NewRazorpayGateway(cfg config.RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		client:     razorpay.NewClient(cfg.KeyID, cfg.Secret),
		totalCount: cfg.TotalCount,
	}
}

func (g *RazorpayGateway) CreateSubscription(ctx context.Context, planID, uid, planName string) (string, error) {
	data := map[string]interface{}{
		"plan_id":         planID,
		"total_count":     g.totalCount,
		"customer_notify": 1,
		"notes": map[string]interface{}{
			"userId":   uid,
			"planName": planName,
		},
	}

	sub, err := g.client.Subscription.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("create subscription for plan %s: %w", planID, err)
	}

	id, _ := sub["id"].(string)
	if id == "" {
		return "", fmt.Errorf("gateway returned no subscription id for plan %s", planID)
	}
	return id, nil
}

func (g *RazorpayGateway) FetchSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	sub, err := g.client.Subscription.Fetch(subscriptionID, nil, nil)
	if err != nil {
		return Subscription{}, fmt.Errorf("fetch subscription %s: %w", subscriptionID, err)
	}

	out := Subscription{ID: subscriptionID}
	out.Status, _ = sub["status"].(string)
	out.PlanID, _ = sub["plan_id"].(string)
	if notes, ok := sub["notes"].(map[string]interface{}); ok {
		out.UserID, _ = notes["userId"].(string)
		out.PlanName, _ = notes["planName"].(string)
	}
	return out, nil
}
