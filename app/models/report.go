// Package models defines the report record and its lifecycle states.
package models

import "time"

// Status is the report lifecycle state. A report is created as
// StatusProcessing and moves exactly once to StatusComplete or StatusError.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Outcome is the terminal transition out of StatusProcessing. Only the two
// variants below exist; there is no way to construct a transition out of a
// terminal state.
type Outcome interface {
	Status() Status
}

// Completed finishes a report with its parsed analysis and share capability.
type Completed struct {
	Analysis Analysis
	ShareID  string
}

func (Completed) Status() Status { return StatusComplete }

// Failed finishes a report with a human-readable upstream error.
type Failed struct {
	Message string
}

func (Failed) Status() Status { return StatusError }

// TestFlag classifies a marker value against its reference range.
type TestFlag string

const (
	FlagNormal TestFlag = "normal"
	FlagHigh   TestFlag = "high"
	FlagLow    TestFlag = "low"
)

// TestResult is one marker row from the blood report.
type TestResult struct {
	Test        string   `json:"test"`
	Value       string   `json:"value"`
	Unit        string   `json:"unit"`
	Range       string   `json:"range"`
	Flag        TestFlag `json:"flag"`
	Explanation string   `json:"explanation"`
	Advice      string   `json:"advice"`
}

type Nutrition struct {
	Focus     string   `json:"focus"`
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Snacks    []string `json:"snacks"`
	Avoid     []string `json:"avoid"`
}

type Lifestyle struct {
	Exercise string `json:"exercise"`
	Sleep    string `json:"sleep"`
	Stress   string `json:"stress"`
}

type Supplement struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Analysis is the structured interpretation of one blood report. Every field
// the dashboard reads is always present: slices are non-nil and nested
// objects are populated with empty defaults at worst.
type Analysis struct {
	Summary        string       `json:"summary"`
	Recommendation string       `json:"recommendation"`
	OverallScore   float64      `json:"overallScore"`
	Tests          []TestResult `json:"tests"`
	HealthGoals    []string     `json:"healthGoals"`
	Nutrition      Nutrition    `json:"nutrition"`
	Lifestyle      Lifestyle    `json:"lifestyle"`
	Supplements    []Supplement `json:"supplements"`
}

// Normalize backfills nil slices so a complete report never serializes an
// absent field.
func (a *Analysis) Normalize() {
	if a.Tests == nil {
		a.Tests = []TestResult{}
	}
	if a.HealthGoals == nil {
		a.HealthGoals = []string{}
	}
	if a.Supplements == nil {
		a.Supplements = []Supplement{}
	}
	if a.Nutrition.Breakfast == nil {
		a.Nutrition.Breakfast = []string{}
	}
	if a.Nutrition.Lunch == nil {
		a.Nutrition.Lunch = []string{}
	}
	if a.Nutrition.Dinner == nil {
		a.Nutrition.Dinner = []string{}
	}
	if a.Nutrition.Snacks == nil {
		a.Nutrition.Snacks = []string{}
	}
	if a.Nutrition.Avoid == nil {
		a.Nutrition.Avoid = []string{}
	}
}

// Report is one uploaded document and its analysis lifecycle.
type Report struct {
	ReportID  string    `json:"reportId"`
	UserID    string    `json:"userId"`
	FileName  string    `json:"fileName"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	ShareID   string    `json:"shareId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Analysis  *Analysis `json:"analysis,omitempty"`
}
