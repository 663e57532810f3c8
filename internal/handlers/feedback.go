package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/cache"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/culture"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/metrics"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/services"
)

const defaultTranslationLanguage = "en"

// Countries lists the cultures with curated data.
func (h *Handler) Countries(c *fiber.Ctx) error {
	codes := culture.SupportedCountries()
	out := make([]culture.CulturalData, 0, len(codes))
	for _, code := range codes {
		out = append(out, *culture.GetCulturalData(code))
	}
	return c.JSON(fiber.Map{"countries": out})
}

// Analyze is the relationship-agnostic manner check. Model failures still return 200.
func (h *Handler) Analyze(c *fiber.Ctx) error {
	var req models.BasicAnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res := h.analyzer.AnalyzeBasic(c.UserContext(), req.Message, req.TargetCountry, req.Language)
	out := models.BasicAnalyzeResponse{
		Type:           res.Type,
		Message:        res.Message,
		CulturalReason: res.CulturalReason,
	}
	if len(res.Suggestions) > 0 {
		out.Suggestion = res.Suggestions[0]
	}
	return c.JSON(out)
}

func (h *Handler) EnhancedAnalyze(c *fiber.Ctx) error {
	var req models.AnalysisRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return c.JSON(h.analyzer.Analyze(c.UserContext(), req))
}

func (h *Handler) GuardrailsCheck(c *fiber.Ctx) error {
	var req models.GuardrailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return c.JSON(h.guardrail.Check(c.UserContext(), req.Message, req.TargetCountry, req.Relationship))
}

// HybridAnalyze runs the guardrail first, then the cultural analysis and the
// translation in parallel. Any failure past the guardrail degrades to the
// default positive verdict.
func (h *Handler) HybridAnalyze(c *fiber.Ctx) error {
	var req models.AnalysisRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req = req.WithDefaults()
	ctx := c.UserContext()

	key := cache.GenerateKey("hybrid", req.Message, req.TargetCountry, req.Relationship)
	if cached, ok := h.hybrid.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hybrid", "hit").Inc()
		return c.JSON(cached)
	}
	metrics.CacheLookups.WithLabelValues("hybrid", "miss").Inc()

	gr := h.guardrail.Check(ctx, req.Message, req.TargetCountry, req.Relationship)
	if gr.Type == models.TypeBlocked {
		metrics.AnalysisTotal.WithLabelValues("hybrid", "blocked").Inc()
		return c.JSON(models.HybridAnalysisResult{
			AnalysisResult: models.AnalysisResult{
				Type:         models.TypeBlocked,
				Message:      blockedMessage,
				Severity:     models.SeverityHigh,
				Alternatives: gr.Alternatives,
				Confidence:   gr.Confidence,
			},
			Guardrail: gr,
		})
	}

	res, err := h.analyzeAndTranslate(ctx, req)
	if err != nil {
		h.log.Warn().Err(err).Str("error_type", string(retry.Classify(err).Type)).
			Str("country", req.TargetCountry).Msg("hybrid analysis failed, returning fallback")
		metrics.AnalysisTotal.WithLabelValues("hybrid", "fallback").Inc()
		return c.JSON(models.HybridAnalysisResult{AnalysisResult: services.FallbackResult(), Guardrail: gr})
	}

	if gr.Type == models.TypeWarning && res.Type == models.TypeGood {
		res.Type = models.TypeWarning
		if res.Severity == "" {
			res.Severity = models.SeverityMedium
		}
		res.CulturalReason = sensitiveTopicReason
	}

	out := models.HybridAnalysisResult{AnalysisResult: res, Guardrail: gr}
	if !res.Fallback {
		h.hybrid.Set(key, out)
	}
	return c.JSON(out)
}

const (
	blockedMessage       = "부적절한 표현이 포함되어 있어요. 아래 대안을 사용해 보세요."
	sensitiveTopicReason = "직장 관계에서는 민감한 주제를 피하는 것이 좋습니다."
)

// analyzeAndTranslate is all-or-nothing: the translation error fails the pair.
func (h *Handler) analyzeAndTranslate(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	target := defaultTranslationLanguage
	if cd := culture.GetCulturalData(req.TargetCountry); cd != nil {
		target = cd.Language
	}

	var (
		res models.AnalysisResult
		tr  models.Translation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res = h.analyzer.Analyze(gctx, req)
		return nil
	})
	g.Go(func() error {
		var err error
		tr, err = h.translator.Translate(gctx, req.Message, "", target)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AnalysisResult{}, err
	}
	res.BasicTranslation = tr.Text
	return res, nil
}
