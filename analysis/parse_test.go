package analysis

import (
	"encoding/json"
	"testing"

	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
)

const sampleReply = `{
	"summary": "Most markers look healthy.",
	"recommendation": "Keep up your current diet.",
	"overallScore": 8,
	"tests": [
		{"test": "Hemoglobin", "value": 13.2, "unit": "g/dL", "range": "13.0 - 17.0", "flag": "NORMAL", "explanation": "Carries oxygen.", "advice": "No change needed."},
		{"test": "Vitamin D", "value": "18", "unit": "ng/mL", "range": "30 - 100", "flag": "Low", "explanation": "Supports bones.", "advice": "Get some sun."}
	],
	"healthGoals": ["Walk 30 minutes daily"],
	"nutrition": {"focus": "Iron-rich foods", "breakfast": ["Oats"], "lunch": ["Lentils"], "dinner": ["Spinach"], "snacks": ["Nuts"], "avoid": ["Sugary drinks"]},
	"lifestyle": {"exercise": "Light cardio", "sleep": "7-8 hours", "stress": "Try breathing exercises"},
	"supplements": [{"name": "Vitamin D3", "reason": "Low blood level"}]
}`

func TestParseAnalysisPlainJSON(t *testing.T) {
	got := ParseAnalysis(sampleReply)

	if got.Summary != "Most markers look healthy." {
		t.Fatalf("summary = %q", got.Summary)
	}
	if got.OverallScore != 8 {
		t.Fatalf("overallScore = %v, want 8", got.OverallScore)
	}
	if len(got.Tests) != 2 {
		t.Fatalf("len(tests) = %d, want 2", len(got.Tests))
	}
	if got.Tests[0].Value != "13.2" {
		t.Fatalf("numeric value not coerced to string: %q", got.Tests[0].Value)
	}
	if got.Tests[0].Flag != models.FlagNormal {
		t.Fatalf("flag %q not normalized", got.Tests[0].Flag)
	}
	if got.Tests[1].Flag != models.FlagLow {
		t.Fatalf("flag %q not normalized to low", got.Tests[1].Flag)
	}
	if got.Nutrition.Focus != "Iron-rich foods" {
		t.Fatalf("nutrition focus = %q", got.Nutrition.Focus)
	}
}

func TestParseAnalysisStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + sampleReply + "\n```"
	got := ParseAnalysis(fenced)
	if got.Summary != "Most markers look healthy." {
		t.Fatalf("fenced reply not parsed, summary = %q", got.Summary)
	}
}

func TestParseAnalysisIgnoresSurroundingProse(t *testing.T) {
	wrapped := "Here is your analysis:\n" + sampleReply + "\nLet me know if you need more."
	got := ParseAnalysis(wrapped)
	if got.Summary != "Most markers look healthy." {
		t.Fatalf("wrapped reply not parsed, summary = %q", got.Summary)
	}
}

func TestParseAnalysisMissingSectionsGetDefaults(t *testing.T) {
	got := ParseAnalysis(`{"summary": "Short report.", "overallScore": 6, "tests": []}`)

	if got.Tests == nil || got.HealthGoals == nil || got.Supplements == nil {
		t.Fatalf("missing sections must default to empty slices: %+v", got)
	}
	if got.Nutrition.Breakfast == nil || got.Nutrition.Avoid == nil {
		t.Fatalf("nutrition lists must be non-nil: %+v", got.Nutrition)
	}

	// Every field the dashboard reads must survive serialization.
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"summary", "tests", "nutrition", "lifestyle", "supplements", "healthGoals"} {
		if _, ok := roundTrip[key]; !ok {
			t.Fatalf("key %q absent after round trip", key)
		}
	}
}

func TestParseAnalysisMalformedSectionsDefaultIndividually(t *testing.T) {
	cases := map[string]string{
		"nutrition as string":   `{"summary": "Most markers look healthy.", "overallScore": 8, "tests": [{"test": "Hemoglobin", "value": "13.2", "flag": "normal"}], "nutrition": "focus on iron"}`,
		"lifestyle as array":    `{"summary": "Most markers look healthy.", "overallScore": 8, "tests": [{"test": "Hemoglobin", "value": "13.2", "flag": "normal"}], "lifestyle": ["sleep more"]}`,
		"healthGoals as string": `{"summary": "Most markers look healthy.", "overallScore": 8, "tests": [{"test": "Hemoglobin", "value": "13.2", "flag": "normal"}], "healthGoals": "walk daily"}`,
		"supplements as object": `{"summary": "Most markers look healthy.", "overallScore": 8, "tests": [{"test": "Hemoglobin", "value": "13.2", "flag": "normal"}], "supplements": {"name": "iron"}}`,
	}
	for name, raw := range cases {
		got := ParseAnalysis(raw)
		if got.Summary != "Most markers look healthy." {
			t.Fatalf("%s: summary dropped, got %q", name, got.Summary)
		}
		if got.OverallScore != 8 {
			t.Fatalf("%s: overallScore = %v, want 8", name, got.OverallScore)
		}
		if len(got.Tests) != 1 || got.Tests[0].Test != "Hemoglobin" {
			t.Fatalf("%s: tests dropped: %+v", name, got.Tests)
		}
		if got.HealthGoals == nil || got.Supplements == nil || got.Nutrition.Breakfast == nil {
			t.Fatalf("%s: malformed section must default to empty, got %+v", name, got)
		}
	}
}

func TestParseAnalysisGarbageYieldsFallback(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "```\ntruncated", `{"broken": `} {
		got := ParseAnalysis(raw)
		if got.Summary == "" {
			t.Fatalf("fallback for %q must carry a summary", raw)
		}
		if got.Tests == nil || got.HealthGoals == nil || got.Supplements == nil {
			t.Fatalf("fallback for %q must be fully populated", raw)
		}
		if got.OverallScore < 1 || got.OverallScore > 10 {
			t.Fatalf("fallback score %v out of range", got.OverallScore)
		}
	}
}

func TestParseAnalysisClampsScore(t *testing.T) {
	if got := ParseAnalysis(`{"summary": "s", "overallScore": 42, "tests": []}`); got.OverallScore != 10 {
		t.Fatalf("score 42 clamped to %v, want 10", got.OverallScore)
	}
	if got := ParseAnalysis(`{"summary": "s", "overallScore": -3, "tests": []}`); got.OverallScore != 1 {
		t.Fatalf("score -3 clamped to %v, want 1", got.OverallScore)
	}
	if got := ParseAnalysis(`{"summary": "s", "overallScore": "7", "tests": []}`); got.OverallScore != 7 {
		t.Fatalf("string score parsed to %v, want 7", got.OverallScore)
	}
}

func TestNormalizeFlag(t *testing.T) {
	cases := map[string]models.TestFlag{
		"high":     models.FlagHigh,
		"HIGH":     models.FlagHigh,
		"elevated": models.FlagHigh,
		"low":      models.FlagLow,
		" Low ":    models.FlagLow,
		"normal":   models.FlagNormal,
		"weird":    models.FlagNormal,
		"":         models.FlagNormal,
	}
	for in, want := range cases {
		if got := normalizeFlag(in); got != want {
			t.Fatalf("normalizeFlag(%q) = %q, want %q", in, got, want)
		}
	}
}
