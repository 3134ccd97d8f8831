// Package app wires the HTTP layer: routing, request validation and the
// mapping from component errors to status codes.
package app

import (
	"context"
	"strings"

	"github.com/nazsats/blood-report-analyzer-sub000/ai"
	"github.com/nazsats/blood-report-analyzer-sub000/analysis"
	"github.com/nazsats/blood-report-analyzer-sub000/app/config"
	"github.com/nazsats/blood-report-analyzer-sub000/assistant"
	"github.com/nazsats/blood-report-analyzer-sub000/auth"
	"github.com/nazsats/blood-report-analyzer-sub000/billing"
	"github.com/nazsats/blood-report-analyzer-sub000/store"
)

// Server holds every collaborator a handler needs. All dependencies are
// constructed once at process start and injected; there are no package-level
// singletons.
type Server struct {
	cfg       *config.Config
	store     store.Store
	verifier  *auth.Verifier
	pipeline  *analysis.Pipeline
	assistant *assistant.Assistant
	billing   *billing.Service
}

func NewServer(
	cfg *config.Config,
	st store.Store,
	verifier *auth.Verifier,
	pipeline *analysis.Pipeline,
	chat *assistant.Assistant,
	billingSvc *billing.Service,
) *Server {
	return &Server{
		cfg:       cfg,
		store:     st,
		verifier:  verifier,
		pipeline:  pipeline,
		assistant: chat,
		billing:   billingSvc,
	}
}

// NewServerFromConfig builds the full production dependency graph.
func NewServerFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := store.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	st := store.NewPostgres(db)

	verifier, err := auth.NewVerifier(cfg.Auth.Issuer, cfg.Auth.Audience, "")
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	model, err := ai.NewGemini(ctx, cfg.Gemini)
	if err != nil {
		return nil, err
	}

	gateway := billing.NewRazorpayGateway(cfg.Razorpay)

	return NewServer(
		cfg,
		st,
		verifier,
		analysis.NewPipeline(st, model),
		assistant.New(st, model),
		billing.NewService(gateway, st, cfg.Razorpay.Secret),
	), nil
}

// shareURL builds the public share link for a completed report.
func (s *Server) shareURL(shareID string) string {
	base := strings.TrimRight(s.cfg.FrontendURL, "/")
	return base + "/share/" + shareID
}
