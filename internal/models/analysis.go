package models

// Verdict types returned by the analysis and guardrail endpoints.
const (
	TypeGood    = "good"
	TypeWarning = "warning"
	TypeBlocked = "blocked"
	TypeAllowed = "allowed"
)

// Severity levels attached to warnings.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Formality tiers for suggested alternatives.
const (
	FormalityFormal     = "formal"
	FormalitySemiFormal = "semi-formal"
	FormalityCasual     = "casual"
)

// Relationship tags driving the expected formality of a message.
const (
	RelationshipBoss      = "boss"
	RelationshipColleague = "colleague"
	RelationshipFriend    = "friend"
	RelationshipLover     = "lover"
	RelationshipParent    = "parent"
	RelationshipStranger  = "stranger"
)

// DefaultLanguage is the UI language assumed when a request omits one.
const DefaultLanguage = "ko"

// AnalysisRequest is built per API call and never persisted.
type AnalysisRequest struct {
	Message       string `json:"message" validate:"required"`
	TargetCountry string `json:"targetCountry" validate:"required"`
	Relationship  string `json:"relationship" validate:"required"`
	Language      string `json:"language,omitempty"`
}

// WithDefaults fills optional fields.
func (r AnalysisRequest) WithDefaults() AnalysisRequest {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return r
}

// Alternative is a suggested replacement phrasing.
type Alternative struct {
	Text           string `json:"text"`
	TranslatedText string `json:"translatedText,omitempty"`
	Reason         string `json:"reason"`
	FormalityLevel string `json:"formalityLevel"`
}

// AnalysisResult is the cultural manner verdict for one message.
// Confidence is passed through as the model reported it and may fall outside [0,1].
type AnalysisResult struct {
	Type             string        `json:"type"`
	Message          string        `json:"message"`
	CulturalReason   string        `json:"culturalReason,omitempty"`
	Severity         string        `json:"severity,omitempty"`
	Suggestions      []string      `json:"suggestions,omitempty"`
	Alternatives     []Alternative `json:"alternatives,omitempty"`
	Confidence       float64       `json:"confidence"`
	BasicTranslation string        `json:"basicTranslation,omitempty"`
	// Fallback marks the default verdict returned when analysis could not run.
	Fallback         bool          `json:"-"`
}

// BasicAnalyzeRequest is the body of POST /api/analyze.
type BasicAnalyzeRequest struct {
	Message       string `json:"message" validate:"required"`
	TargetCountry string `json:"targetCountry" validate:"required"`
	Language      string `json:"language,omitempty"`
}

// BasicAnalyzeResponse is the reduced shape returned by POST /api/analyze.
type BasicAnalyzeResponse struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Suggestion     string `json:"suggestion,omitempty"`
	CulturalReason string `json:"culturalReason,omitempty"`
}

// GuardrailRequest is the body of POST /api/guardrails-check.
type GuardrailRequest struct {
	Message       string `json:"message" validate:"required"`
	TargetCountry string `json:"targetCountry" validate:"required"`
	Relationship  string `json:"relationship" validate:"required"`
}

// GuardrailResult is the moderation pre-check verdict.
type GuardrailResult struct {
	Type         string        `json:"type"`
	Reason       string        `json:"reason,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
	Confidence   float64       `json:"confidence"`
	Source       string        `json:"source,omitempty"`
}

// HybridAnalysisResult is the guardrail verdict merged with the cultural analysis.
type HybridAnalysisResult struct {
	AnalysisResult
	Guardrail GuardrailResult `json:"guardrail"`
}
