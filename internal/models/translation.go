package models

// TranslateAnalyzeRequest is the body of POST /api/translate-analyze.
type TranslateAnalyzeRequest struct {
	Text           string `json:"text" validate:"required"`
	TargetLanguage string `json:"targetLanguage" validate:"required"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetCountry  string `json:"targetCountry" validate:"required"`
}

// TranslateAnalyzeResponse pairs a translation with its manner feedback.
type TranslateAnalyzeResponse struct {
	OriginalText     string         `json:"originalText"`
	TranslatedText   string         `json:"translatedText"`
	DetectedLanguage string         `json:"detectedLanguage"`
	TargetLanguage   string         `json:"targetLanguage"`
	MannerFeedback   AnalysisResult `json:"mannerFeedback"`
}

// Translation is the output of a translator backend.
type Translation struct {
	Text           string `json:"translatedText"`
	SourceLanguage string `json:"sourceLanguage"`
}

// TranscribeResponse is returned by POST /api/transcribe.
type TranscribeResponse struct {
	Text string `json:"text"`
}
