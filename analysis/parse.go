package analysis

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nazsats/blood-report-analyzer-sub000/app/models"
)

// fallbackAnalysis is the conservative shell returned when the model's reply
// cannot be parsed at all. The model call itself succeeded, so the report
// still completes rather than erroring.
func fallbackAnalysis() models.Analysis {
	a := models.Analysis{
		Summary:        "We could not generate a structured analysis for this report.",
		Recommendation: "Please try again with a clearer photo of your report, and review any values you are unsure about with your doctor.",
		OverallScore:   5,
	}
	a.Normalize()
	return a
}

// flexString decodes a JSON string or number into a string. The model
// frequently emits bare numbers where the contract asks for strings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	// Tolerate any other shape as empty rather than failing the parse.
	*f = ""
	return nil
}

// flexFloat decodes a JSON number or numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexFloat(n)
			return nil
		}
	}
	*f = 0
	return nil
}

type rawTest struct {
	Test        flexString `json:"test"`
	Value       flexString `json:"value"`
	Unit        flexString `json:"unit"`
	Range       flexString `json:"range"`
	Flag        flexString `json:"flag"`
	Explanation flexString `json:"explanation"`
	Advice      flexString `json:"advice"`
}

type rawSupplement struct {
	Name   flexString `json:"name"`
	Reason flexString `json:"reason"`
}

// The optional substructures are captured raw and decoded one by one: a
// malformed section defaults on its own instead of failing the whole parse.
type rawAnalysis struct {
	Summary        flexString      `json:"summary"`
	Recommendation flexString      `json:"recommendation"`
	OverallScore   flexFloat       `json:"overallScore"`
	Tests          []rawTest       `json:"tests"`
	HealthGoals    json.RawMessage `json:"healthGoals"`
	Nutrition      json.RawMessage `json:"nutrition"`
	Lifestyle      json.RawMessage `json:"lifestyle"`
	Supplements    json.RawMessage `json:"supplements"`
}

// ParseAnalysis turns the model's raw text reply into a fully populated
// Analysis. It is total: any input, including garbage, yields a usable value.
// Missing or malformed substructures are replaced with empty defaults.
func ParseAnalysis(raw string) models.Analysis {
	body := extractJSON(raw)

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return fallbackAnalysis()
	}
	if parsed.Summary == "" && len(parsed.Tests) == 0 {
		return fallbackAnalysis()
	}

	score := float64(parsed.OverallScore)
	if score == 0 {
		// Absent or unparseable score; middle of the scale, not the floor.
		score = 5
	}
	out := models.Analysis{
		Summary:        string(parsed.Summary),
		Recommendation: string(parsed.Recommendation),
		OverallScore:   clampScore(score),
	}
	for _, t := range parsed.Tests {
		out.Tests = append(out.Tests, models.TestResult{
			Test:        string(t.Test),
			Value:       string(t.Value),
			Unit:        string(t.Unit),
			Range:       string(t.Range),
			Flag:        normalizeFlag(string(t.Flag)),
			Explanation: string(t.Explanation),
			Advice:      string(t.Advice),
		})
	}
	var goals []flexString
	if decodeSection(parsed.HealthGoals, &goals) {
		for _, g := range goals {
			if g != "" {
				out.HealthGoals = append(out.HealthGoals, string(g))
			}
		}
	}
	var nutrition models.Nutrition
	if decodeSection(parsed.Nutrition, &nutrition) {
		out.Nutrition = nutrition
	}
	var lifestyle models.Lifestyle
	if decodeSection(parsed.Lifestyle, &lifestyle) {
		out.Lifestyle = lifestyle
	}
	var supplements []rawSupplement
	if decodeSection(parsed.Supplements, &supplements) {
		for _, s := range supplements {
			if s.Name != "" {
				out.Supplements = append(out.Supplements, models.Supplement{
					Name:   string(s.Name),
					Reason: string(s.Reason),
				})
			}
		}
	}

	out.Normalize()
	return out
}

// decodeSection decodes one optional substructure. A missing or malformed
// section reports false and the caller keeps the empty default.
func decodeSection(raw json.RawMessage, dest any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// extractJSON strips optional Markdown code fences and any prose around the
// outermost JSON object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func clampScore(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func normalizeFlag(flag string) models.TestFlag {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "high", "elevated":
		return models.FlagHigh
	case "low":
		return models.FlagLow
	default:
		return models.FlagNormal
	}
}
