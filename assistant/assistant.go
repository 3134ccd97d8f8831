// Package assistant implements the stateless follow-up chat over a report.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nazsats/blood-report-analyzer-sub000/ai"
	"github.com/nazsats/blood-report-analyzer-sub000/store"
)

const replyTimeout = 30 * time.Second

const systemTemplate = `You are a friendly health assistant answering follow-up questions about a
blood test report. The report context, as JSON, is:

%s

Rules: be reassuring and practical. Never diagnose a disease or prescribe
medication; suggest seeing a doctor for anything serious. Keep answers short
unless the user asks for detail. If the question is unrelated to health or
this report, politely steer the conversation back.`

// Assistant answers per-request chat completions. No state is retained
// between calls; the caller resupplies the full transcript every time.
type Assistant struct {
	store store.Store
	model ai.Client
}

func New(st store.Store, model ai.Client) *Assistant {
	return &Assistant{store: st, model: model}
}

// Reply grounds the transcript in the named report's stored fields and
// forwards the whole conversation to the model. An unknown or empty reportId
// yields an empty context, not an error.
func (a *Assistant) Reply(ctx context.Context, reportID string, messages []ai.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages supplied")
	}

	reportContext := "{}"
	if reportID != "" {
		report, err := a.store.GetReport(ctx, reportID)
		if err == nil && report.Analysis != nil {
			if data, err := json.Marshal(report.Analysis); err == nil {
				reportContext = string(data)
			}
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("load report context: %w", err)
		}
	}

	system := fmt.Sprintf(systemTemplate, reportContext)

	modelCtx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	return a.model.Chat(modelCtx, system, messages)
}
