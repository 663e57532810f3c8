package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/cache"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/metrics"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
)

const (
	// FallbackMessage is shown when analysis could not run; the message is let through.
	FallbackMessage    = "매너 굿! 문화적으로 괜찮은 메시지예요 👍"
	FallbackConfidence = 0.5

	analysisMaxTokens   = 1000
	analysisTemperature = 0.1

	basicKeyPrefix = "basic"
)

// FallbackResult is returned whenever analysis fails for any reason.
func FallbackResult() models.AnalysisResult {
	return models.AnalysisResult{
		Type:       models.TypeGood,
		Message:    FallbackMessage,
		Confidence: FallbackConfidence,
		Fallback:   true,
	}
}

type AnalyzerOptions struct {
	Cache  *cache.Cache[models.AnalysisResult]
	Retry  retry.Policy
	Logger zerolog.Logger
}

// Analyzer builds manner-check prompts, calls the LLM with retries and parses
// the reply. It never fails: every error degrades to FallbackResult.
type Analyzer struct {
	llm    LLM
	cache  *cache.Cache[models.AnalysisResult]
	policy retry.Policy
	log    zerolog.Logger
}

func NewAnalyzer(llm LLM, opts AnalyzerOptions) *Analyzer {
	c := opts.Cache
	if c == nil {
		c = cache.New[models.AnalysisResult](cache.DefaultTTL, cache.DefaultMaxSize)
	}
	policy := opts.Retry
	if policy.OnRetry == nil {
		policy.OnRetry = func(err *retry.Error, attempt int, delay time.Duration) {
			metrics.LLMRetries.WithLabelValues(string(err.Type)).Inc()
			opts.Logger.Warn().Err(err.Err).Str("error_type", string(err.Type)).
				Int("attempt", attempt).Dur("delay", delay).Msg("retrying LLM call")
		}
	}
	return &Analyzer{llm: llm, cache: c, policy: policy, log: opts.Logger}
}

// CacheKey is the key under which Analyze stores a successful result.
func CacheKey(req models.AnalysisRequest) string {
	return cache.GenerateKey(req.Message, req.TargetCountry, req.Relationship)
}

// Cache exposes the result cache, mainly for inspection in tests.
func (a *Analyzer) Cache() *cache.Cache[models.AnalysisResult] { return a.cache }

// Analyze returns the relationship-aware manner verdict for a message.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	req = req.WithDefaults()
	key := CacheKey(req)
	data := NewPromptData(req.Message, req.TargetCountry, req.Relationship, req.Language)
	return a.run(ctx, "enhanced", key, "enhanced", data)
}

// AnalyzeBasic is the relationship-agnostic variant used by /api/analyze.
func (a *Analyzer) AnalyzeBasic(ctx context.Context, message, targetCountry, language string) models.AnalysisResult {
	if language == "" {
		language = models.DefaultLanguage
	}
	key := cache.GenerateKey(basicKeyPrefix, message, targetCountry)
	data := NewPromptData(message, targetCountry, "", language)
	return a.run(ctx, "basic", key, "basic", data)
}

func (a *Analyzer) run(ctx context.Context, route, key, tmpl string, data PromptData) models.AnalysisResult {
	if cached, ok := a.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("analysis", "hit").Inc()
		metrics.AnalysisTotal.WithLabelValues(route, "cache").Inc()
		return cached
	}
	metrics.CacheLookups.WithLabelValues("analysis", "miss").Inc()

	res, err := a.call(ctx, tmpl, data)
	if err != nil {
		ev := a.log.Warn().Err(err).Str("route", route).Str("country", data.Culture.Code)
		var classified *retry.Error
		if errors.As(err, &classified) {
			ev = ev.Str("error_type", string(classified.Type))
		}
		ev.Msg("analysis failed, returning fallback")
		metrics.AnalysisTotal.WithLabelValues(route, "fallback").Inc()
		return FallbackResult()
	}

	a.cache.Set(key, res)
	metrics.AnalysisTotal.WithLabelValues(route, "llm").Inc()
	return res
}

func (a *Analyzer) call(ctx context.Context, tmpl string, data PromptData) (models.AnalysisResult, error) {
	if data.Message == "" {
		return models.AnalysisResult{}, ErrEmptyMessage
	}
	prompt, err := RenderPrompt(tmpl, data)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	raw, err := retry.Do(ctx, a.policy, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, CompletionParams{
			System:      systemPrompt,
			Prompt:      prompt,
			MaxTokens:   analysisMaxTokens,
			Temperature: analysisTemperature,
		})
	})
	if err != nil {
		return models.AnalysisResult{}, err
	}

	a.log.Debug().Str("template", tmpl).Int("reply_len", len(raw)).Msg("LLM reply received")
	return ParseAnalysis(raw)
}
