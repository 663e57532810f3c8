package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
)

// Defaults for fields the model left out.
const (
	DefaultPraise         = "좋은 메시지예요! 👍"
	DefaultCulturalReason = "문화적으로 적절한 표현입니다."
	DefaultConfidence     = 0.7
)

var (
	ErrEmptyMessage = fmt.Errorf("%w: empty message", retry.ErrValidation)
	ErrEmptyReply   = fmt.Errorf("%w: empty model reply", retry.ErrValidation)
	ErrNoJSON       = fmt.Errorf("%w: no JSON object in model reply", retry.ErrValidation)
)

var (
	fencedJSONRE = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fencedAnyRE  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*\\s*(.*?)```")
)

// extractor pulls a JSON candidate out of free text.
type extractor func(string) (string, bool)

// extractors are tried in order of preference.
var extractors = []extractor{fencedJSON, fencedAny, braceSpan}

func fencedJSON(s string) (string, bool) {
	if m := fencedJSONRE.FindStringSubmatch(s); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func fencedAny(s string) (string, bool) {
	if m := fencedAnyRE.FindStringSubmatch(s); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func braceSpan(s string) (string, bool) {
	i := strings.Index(s, "{")
	j := strings.LastIndex(s, "}")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

// rawAnalysis keeps presence information so defaults apply only to absent fields.
type rawAnalysis struct {
	Type             *string              `json:"type"`
	Message          *string              `json:"message"`
	CulturalReason   *string              `json:"culturalReason"`
	Severity         string               `json:"severity"`
	Suggestions      []string             `json:"suggestions"`
	Suggestion       string               `json:"suggestion"`
	Alternatives     []models.Alternative `json:"alternatives"`
	Confidence       *float64             `json:"confidence"`
	BasicTranslation string               `json:"basicTranslation"`
}

// ParseAnalysis recovers an AnalysisResult from a free-text model reply.
// Candidates from each extractor are decoded in order; the first that decodes wins.
func ParseAnalysis(raw string) (models.AnalysisResult, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.AnalysisResult{}, ErrEmptyReply
	}

	var lastErr error
	for _, extract := range extractors {
		candidate, ok := extract(s)
		if !ok {
			continue
		}
		var ra rawAnalysis
		if err := json.Unmarshal([]byte(candidate), &ra); err != nil {
			lastErr = err
			continue
		}
		return ra.toResult(), nil
	}
	if lastErr != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", retry.ErrValidation, lastErr)
	}
	return models.AnalysisResult{}, ErrNoJSON
}

func (ra rawAnalysis) toResult() models.AnalysisResult {
	res := models.AnalysisResult{
		Type:             models.TypeGood,
		Message:          DefaultPraise,
		CulturalReason:   DefaultCulturalReason,
		Severity:         normalizeSeverity(ra.Severity),
		Suggestions:      ra.Suggestions,
		Alternatives:     ra.Alternatives,
		Confidence:       DefaultConfidence,
		BasicTranslation: strings.TrimSpace(ra.BasicTranslation),
	}
	if ra.Type != nil {
		if t := strings.ToLower(strings.TrimSpace(*ra.Type)); isAnalysisType(t) {
			res.Type = t
		}
	}
	if ra.Message != nil && strings.TrimSpace(*ra.Message) != "" {
		res.Message = *ra.Message
	}
	if ra.CulturalReason != nil && strings.TrimSpace(*ra.CulturalReason) != "" {
		res.CulturalReason = *ra.CulturalReason
	}
	if ra.Confidence != nil {
		res.Confidence = *ra.Confidence
	}
	if len(res.Suggestions) == 0 && strings.TrimSpace(ra.Suggestion) != "" {
		res.Suggestions = []string{ra.Suggestion}
	}
	return res
}

func isAnalysisType(t string) bool {
	switch t {
	case models.TypeGood, models.TypeWarning, models.TypeBlocked, models.TypeAllowed:
		return true
	}
	return false
}

func normalizeSeverity(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
		return s
	}
	return ""
}
