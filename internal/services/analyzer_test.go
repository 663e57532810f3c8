package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/cache"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
)

type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	prompts []CompletionParams
}

func (f *fakeLLM) Complete(_ context.Context, p CompletionParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no reply scripted")
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

type instantTimer struct{ c chan time.Time }

func newInstantTimer() *instantTimer { return &instantTimer{c: make(chan time.Time, 1)} }

func (t *instantTimer) Start(time.Duration) { t.c <- time.Now() }
func (t *instantTimer) Stop()               {}
func (t *instantTimer) C() <-chan time.Time { return t.c }

func newTestAnalyzer(llm LLM) *Analyzer {
	return NewAnalyzer(llm, AnalyzerOptions{
		Cache:  cache.New[models.AnalysisResult](time.Minute, 10),
		Retry:  retry.Policy{MaxRetries: 2, BaseDelay: time.Second, Timer: newInstantTimer()},
		Logger: zerolog.Nop(),
	})
}

func TestAnalyze_GoodReplyIsCached(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"type":"good","message":"👍"}`}}
	a := newTestAnalyzer(llm)
	req := models.AnalysisRequest{Message: "안녕하세요", TargetCountry: "US", Relationship: "friend"}

	res := a.Analyze(context.Background(), req)
	assert.Equal(t, models.TypeGood, res.Type)
	assert.Equal(t, "👍", res.Message)
	assert.False(t, res.Fallback)

	cached, ok := a.Cache().Get(cache.GenerateKey("안녕하세요", "US", "friend"))
	require.True(t, ok)
	assert.Equal(t, res, cached)

	// served from cache without another model call
	again := a.Analyze(context.Background(), req)
	assert.Equal(t, res, again)
	assert.Equal(t, 1, llm.calls)
}

func TestAnalyze_FailingModelReturnsFallback(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model exploded")}
	a := newTestAnalyzer(llm)

	var res models.AnalysisResult
	require.NotPanics(t, func() {
		res = a.Analyze(context.Background(), models.AnalysisRequest{
			Message: "안녕하세요", TargetCountry: "US", Relationship: "friend",
		})
	})
	assert.Equal(t, models.TypeGood, res.Type)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Contains(t, res.Message, "매너 굿")
	assert.True(t, res.Fallback)
	assert.Equal(t, 3, llm.calls)
	assert.Equal(t, 0, a.Cache().Len())
}

func TestAnalyze_AccessDeniedIsNotRetried(t *testing.T) {
	llm := &fakeLLM{err: &statusError{status: 403, err: errors.New("denied")}}
	a := newTestAnalyzer(llm)

	res := a.Analyze(context.Background(), models.AnalysisRequest{
		Message: "hello", TargetCountry: "JP", Relationship: "boss",
	})
	assert.Equal(t, FallbackMessage, res.Message)
	assert.Equal(t, 1, llm.calls)
}

func TestAnalyze_UnparseableReplyFallsBack(t *testing.T) {
	llm := &fakeLLM{replies: []string{"I think this message is fine."}}
	a := newTestAnalyzer(llm)

	res := a.Analyze(context.Background(), models.AnalysisRequest{
		Message: "hello", TargetCountry: "JP", Relationship: "boss",
	})
	assert.Equal(t, FallbackResult(), res)
	assert.Equal(t, 0, a.Cache().Len())
}

func TestAnalyze_PromptCarriesContext(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"type":"warning","message":"too casual"}`}}
	a := newTestAnalyzer(llm)

	res := a.Analyze(context.Background(), models.AnalysisRequest{
		Message: "yo what's up", TargetCountry: "JP", Relationship: "boss", Language: "en",
	})
	assert.Equal(t, models.TypeWarning, res.Type)

	require.Len(t, llm.prompts, 1)
	p := llm.prompts[0]
	assert.Equal(t, systemPrompt, p.System)
	assert.Equal(t, analysisMaxTokens, p.MaxTokens)
	assert.InDelta(t, analysisTemperature, p.Temperature, 1e-6)
	assert.Contains(t, p.Prompt, `"yo what's up"`)
	assert.Contains(t, p.Prompt, "Japan")
	assert.Contains(t, p.Prompt, `language with code "en"`)
}

func TestAnalyze_UnknownCountryStillAnalyzes(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"type":"good","message":"ok"}`}}
	a := newTestAnalyzer(llm)

	res := a.Analyze(context.Background(), models.AnalysisRequest{
		Message: "hi", TargetCountry: "XX", Relationship: "friend",
	})
	assert.Equal(t, "ok", res.Message)
	assert.Contains(t, llm.prompts[0].Prompt, "XX")
}

func TestAnalyzeBasic_UsesSeparateKeySpace(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"type":"warning","message":"careful","suggestion":"Try a greeting first"}`}}
	a := newTestAnalyzer(llm)

	res := a.AnalyzeBasic(context.Background(), "hi", "KR", "")
	assert.Equal(t, models.TypeWarning, res.Type)
	assert.Equal(t, []string{"Try a greeting first"}, res.Suggestions)

	_, ok := a.Cache().Get(cache.GenerateKey("basic", "hi", "KR"))
	assert.True(t, ok)
	_, ok = a.Cache().Get(cache.GenerateKey("hi", "KR", ""))
	assert.False(t, ok)
}
