// Package store persists users and reports. Two top-level collections exist:
// users keyed by uid and reports keyed by reportId; the report analysis
// payload is stored as a single JSON document.
package store

import (
	"context"
	"errors"

	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyFinished means a report was not in the processing state, so
	// no terminal transition was applied.
	ErrAlreadyFinished = errors.New("report already finished")
)

// Store is the persistence contract handlers and pipelines depend on.
type Store interface {
	// EnsureUser creates the user record on first sight and returns it.
	EnsureUser(ctx context.Context, uid, email string) (models.User, error)
	GetUser(ctx context.Context, uid string) (models.User, error)
	// RecordFreeUpload increments free_uploads_used by exactly 1 inside a
	// single-row transaction so concurrent analyses cannot lose an update.
	RecordFreeUpload(ctx context.Context, uid string) error
	// ActivateSubscription merge-writes the pro entitlement fields.
	ActivateSubscription(ctx context.Context, uid string, plan models.Plan, subID string) error

	CreateReport(ctx context.Context, report models.Report) error
	// FinishReport applies the single terminal transition out of processing.
	FinishReport(ctx context.Context, reportID string, outcome models.Outcome) error
	GetReport(ctx context.Context, reportID string) (models.Report, error)
	GetReportByShareID(ctx context.Context, shareID string) (models.Report, error)
	ListReports(ctx context.Context, uid string) ([]models.Report, error)
}
