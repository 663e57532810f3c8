package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/database"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/services"
)

type fakeAnalyzer struct {
	mu     sync.Mutex
	result models.AnalysisResult
	calls  []models.AnalysisRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) models.AnalysisResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.result
}

func (f *fakeAnalyzer) AnalyzeBasic(_ context.Context, message, country, language string) models.AnalysisResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, models.AnalysisRequest{Message: message, TargetCountry: country, Language: language})
	return f.result
}

type fakeGuardrail struct{ result models.GuardrailResult }

func (f *fakeGuardrail) Check(context.Context, string, string, string) models.GuardrailResult {
	return f.result
}

type fakeTranslator struct {
	mu     sync.Mutex
	result models.Translation
	err    error
	target string
}

func (f *fakeTranslator) Translate(_ context.Context, _, _, target string) (models.Translation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = target
	return f.result, f.err
}

type fakeTranscriber struct {
	text     string
	err      error
	audio    []byte
	language string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte, _ string, languageCode string) (string, error) {
	f.audio, f.language = audio, languageCode
	return f.text, f.err
}

type testEnv struct {
	app         *fiber.App
	store       *database.MemoryStore
	analyzer    *fakeAnalyzer
	guardrail   *fakeGuardrail
	translator  *fakeTranslator
	transcriber *fakeTranscriber
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:       database.NewMemoryStore(),
		analyzer:    &fakeAnalyzer{result: models.AnalysisResult{Type: models.TypeGood, Message: "좋아요", Confidence: 0.9}},
		guardrail:   &fakeGuardrail{result: models.GuardrailResult{Type: models.TypeAllowed, Confidence: 0.8}},
		translator:  &fakeTranslator{result: models.Translation{Text: "Hello", SourceLanguage: "ko"}},
		transcriber: &fakeTranscriber{text: "안녕하세요"},
	}
	h := New(Options{
		Analyzer:    env.analyzer,
		Guardrail:   env.guardrail,
		Translator:  env.translator,
		Transcriber: env.transcriber,
		Store:       env.store,
		Logger:      zerolog.Nop(),
	})
	h.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	env.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.Register(env.app)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t)
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCountries(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/countries", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["countries"], 12)
}

func TestAnalyze_ReducedShape(t *testing.T) {
	env := newEnv(t)
	env.analyzer.result = models.AnalysisResult{
		Type: models.TypeWarning, Message: "careful", CulturalReason: "too direct",
		Suggestions: []string{"soften it", "second"}, Confidence: 0.8,
	}

	resp, body := env.do(t, http.MethodPost, "/api/analyze", map[string]string{"message": "Give me that", "targetCountry": "JP"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "warning", body["type"])
	assert.Equal(t, "soften it", body["suggestion"])
	assert.NotContains(t, body, "confidence")
}

func TestEnhancedAnalyze_Validation(t *testing.T) {
	env := newEnv(t)
	for _, payload := range []map[string]string{
		{"targetCountry": "US", "relationship": "friend"},
		{"message": "hi", "relationship": "friend"},
		{"message": "hi", "targetCountry": "US"},
	} {
		resp, body := env.do(t, http.MethodPost, "/api/enhanced-analyze", payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, payload)
		assert.NotEmpty(t, body["error"])
	}
	assert.Empty(t, env.analyzer.calls)

	resp, body := env.do(t, http.MethodPost, "/api/enhanced-analyze", map[string]string{
		"message": "hi", "targetCountry": "US", "relationship": "friend",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "좋아요", body["message"])
}

func TestEnhancedAnalyze_UnknownRelationshipIsAnalyzed(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/enhanced-analyze", map[string]string{
		"message": "hi", "targetCountry": "US", "relationship": "mentor",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "좋아요", body["message"])
	require.Len(t, env.analyzer.calls, 1)
	assert.Equal(t, "mentor", env.analyzer.calls[0].Relationship)

	resp, _ = env.do(t, http.MethodPost, "/api/hybrid-analyze", map[string]string{
		"message": "hi", "targetCountry": "US", "relationship": "mentor",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEnhancedAnalyze_InvalidJSON(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/enhanced-analyze", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGuardrailsCheck(t *testing.T) {
	env := newEnv(t)
	env.guardrail.result = services.FallbackCheck("shit", models.RelationshipFriend)

	resp, body := env.do(t, http.MethodPost, "/api/guardrails-check", map[string]string{
		"message": "shit", "targetCountry": "US", "relationship": "friend",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "blocked", body["type"])
	assert.Len(t, body["alternatives"], 3)
}

func hybridBody() map[string]string {
	return map[string]string{"message": "안녕하세요", "targetCountry": "JP", "relationship": "boss"}
}

func TestHybridAnalyze_BlockedShortCircuits(t *testing.T) {
	env := newEnv(t)
	env.guardrail.result = services.FallbackCheck("병신", models.RelationshipBoss)

	resp, body := env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "blocked", body["type"])
	assert.Len(t, body["alternatives"], 3)
	assert.Empty(t, env.analyzer.calls)
}

func TestHybridAnalyze_AddsTranslation(t *testing.T) {
	env := newEnv(t)
	env.translator.result = models.Translation{Text: "こんにちは"}

	resp, body := env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "good", body["type"])
	assert.Equal(t, "こんにちは", body["basicTranslation"])
	assert.Equal(t, "ja", env.translator.target)

	// second call is served from the hybrid cache
	_, _ = env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Len(t, env.analyzer.calls, 1)
}

func TestHybridAnalyze_WarningPromotesGood(t *testing.T) {
	env := newEnv(t)
	env.guardrail.result = models.GuardrailResult{Type: models.TypeWarning, Reason: "sensitive_topic_workplace", Confidence: 0.7}

	_, body := env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, "warning", body["type"])
	assert.Equal(t, "medium", body["severity"])
	guard, ok := body["guardrail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sensitive_topic_workplace", guard["reason"])
}

func TestHybridAnalyze_TranslationFailureDegradesToGood(t *testing.T) {
	env := newEnv(t)
	env.translator.err = errors.New("translate down")

	resp, body := env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "good", body["type"])
	assert.Equal(t, services.FallbackMessage, body["message"])
	assert.InDelta(t, 0.5, body["confidence"], 1e-9)
}

type flakyLLM struct {
	mu    sync.Mutex
	err   error
	reply string
	calls int
}

func (f *flakyLLM) Complete(context.Context, services.CompletionParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, f.err
}

func TestHybridAnalyze_FallbackIsNotCached(t *testing.T) {
	env := newEnv(t)
	llm := &flakyLLM{err: errors.New("model unavailable")}
	h := New(Options{
		Analyzer: services.NewAnalyzer(llm, services.AnalyzerOptions{
			Retry:  retry.Policy{MaxRetries: 0},
			Logger: zerolog.Nop(),
		}),
		Guardrail:  env.guardrail,
		Translator: env.translator,
		Store:      env.store,
		Logger:     zerolog.Nop(),
	})
	env.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.Register(env.app)

	_, body := env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, "good", body["type"])
	assert.Equal(t, services.FallbackMessage, body["message"])
	assert.NotContains(t, body, "Fallback")

	llm.mu.Lock()
	llm.err = nil
	llm.reply = `{"type":"warning","message":"너무 직설적이에요","confidence":0.8}`
	llm.mu.Unlock()

	_, body = env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, "warning", body["type"])
	assert.Equal(t, "너무 직설적이에요", body["message"])
	assert.Equal(t, 2, llm.calls)

	// the real verdict is cached
	_, _ = env.do(t, http.MethodPost, "/api/hybrid-analyze", hybridBody())
	assert.Equal(t, 2, llm.calls)
}

func TestTranslateAnalyze(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/translate-analyze", map[string]string{
		"text": "안녕하세요", "targetLanguage": "en", "targetCountry": "US",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "안녕하세요", body["originalText"])
	assert.Equal(t, "Hello", body["translatedText"])
	assert.Equal(t, "ko", body["detectedLanguage"])
	assert.Equal(t, "en", body["targetLanguage"])
	feedback, ok := body["mannerFeedback"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "good", feedback["type"])
}

func TestTranslateAnalyze_TranslationFailureIs500(t *testing.T) {
	env := newEnv(t)
	env.translator.err = errors.New("translate down")

	resp, body := env.do(t, http.MethodPost, "/api/translate-analyze", map[string]string{
		"text": "안녕하세요", "targetLanguage": "en", "targetCountry": "US",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "translate down")
}

func multipartAudio(t *testing.T, withFile bool, language string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if withFile {
		part, err := w.CreateFormFile("audio", "clip.webm")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-audio"))
		require.NoError(t, err)
	}
	if language != "" {
		require.NoError(t, w.WriteField("languageCode", language))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestTranscribe(t *testing.T) {
	env := newEnv(t)
	resp, err := env.app.Test(multipartAudio(t, true, "en-US"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.TranscribeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "안녕하세요", out.Text)
	assert.Equal(t, []byte("fake-audio"), env.transcriber.audio)
	assert.Equal(t, "en-US", env.transcriber.language)
}

func TestTranscribe_Errors(t *testing.T) {
	env := newEnv(t)
	resp, err := env.app.Test(multipartAudio(t, false, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.transcriber.err = errors.New("job failed")
	resp, err = env.app.Test(multipartAudio(t, true, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
