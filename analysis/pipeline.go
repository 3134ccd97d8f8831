// Package analysis implements the report ingestion pipeline: normalize the
// uploaded image, submit it to the language model, parse the reply and drive
// the report record through its lifecycle.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nazsats/blood-report-analyzer-sub000/ai"
	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
	"github.com/nazsats/blood-report-analyzer-sub000/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// modelTimeout bounds the single language-model call. The call is not retried.
const modelTimeout = 60 * time.Second

// Pipeline orchestrates one analysis request end to end.
type Pipeline struct {
	store store.Store
	model ai.Client
}

func NewPipeline(st store.Store, model ai.Client) *Pipeline {
	return &Pipeline{store: st, model: model}
}

// Result carries the identifiers of a successfully analyzed report.
type Result struct {
	ReportID string
	ShareID  string
}

// Run executes the pipeline for an already-authorized user. A report record
// with status processing is written before any slow work, so every accepted
// request has a durable record; any later failure transitions that record to
// error exactly once.
func (p *Pipeline) Run(ctx context.Context, user models.User, fileName string, data []byte) (Result, error) {
	reportID := uuid.NewString()
	if err := p.store.CreateReport(ctx, models.Report{
		ReportID: reportID,
		UserID:   user.Uid,
		FileName: fileName,
		Status:   models.StatusProcessing,
	}); err != nil {
		return Result{}, fmt.Errorf("create report: %w", err)
	}

	shareID, err := p.process(ctx, user, reportID, data)
	if err != nil {
		log.WithFields(log.Fields{"reportId": reportID, "uid": user.Uid}).WithError(err).Error("analysis pipeline failed")
		failErr := p.store.FinishReport(ctx, reportID, models.Failed{Message: err.Error()})
		if failErr != nil && !errors.Is(failErr, store.ErrAlreadyFinished) {
			log.WithField("reportId", reportID).WithError(failErr).Error("could not mark report as failed")
		}
		return Result{}, err
	}

	return Result{ReportID: reportID, ShareID: shareID}, nil
}

func (p *Pipeline) process(ctx context.Context, user models.User, reportID string, data []byte) (string, error) {
	image, mimeType, err := NormalizeImage(data)
	if err != nil {
		return "", err
	}

	modelCtx, cancel := context.WithTimeout(ctx, modelTimeout)
	defer cancel()

	raw, err := p.model.AnalyzeImage(modelCtx, image, mimeType, analysisInstruction)
	if err != nil {
		return "", err
	}

	result := ParseAnalysis(raw)
	shareID := uuid.NewString()

	if err := p.store.FinishReport(ctx, reportID, models.Completed{Analysis: result, ShareID: shareID}); err != nil {
		return "", fmt.Errorf("finish report: %w", err)
	}

	// The counter moves only after a successful completion, and only for
	// free-tier users.
	if !user.Pro {
		if err := p.store.RecordFreeUpload(ctx, user.Uid); err != nil {
			return "", fmt.Errorf("record usage: %w", err)
		}
	}

	return shareID, nil
}
