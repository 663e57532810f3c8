package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/cache"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/database"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/services"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/utils"
)

// Analyzer produces manner verdicts. Implementations never fail.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult
	AnalyzeBasic(ctx context.Context, message, targetCountry, language string) models.AnalysisResult
}

// Guardrail is the moderation pre-check.
type Guardrail interface {
	Check(ctx context.Context, message, targetCountry, relationship string) models.GuardrailResult
}

// Transcriber converts uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, languageCode string) (string, error)
}

type Options struct {
	Analyzer    Analyzer
	Guardrail   Guardrail
	Translator  services.Translator
	Transcriber Transcriber
	Store       database.Store
	Logger      zerolog.Logger
	// HybridCache holds combined hybrid-analyze results; nil gets a default instance.
	HybridCache *cache.Cache[models.HybridAnalysisResult]
}

// Handler serves the CultureChat REST API.
type Handler struct {
	analyzer    Analyzer
	guardrail   Guardrail
	translator  services.Translator
	transcriber Transcriber
	store       database.Store
	hybrid      *cache.Cache[models.HybridAnalysisResult]
	log         zerolog.Logger
	now         func() time.Time
}

func New(opts Options) *Handler {
	hc := opts.HybridCache
	if hc == nil {
		hc = cache.New[models.HybridAnalysisResult](cache.DefaultTTL, cache.DefaultMaxSize)
	}
	return &Handler{
		analyzer:    opts.Analyzer,
		guardrail:   opts.Guardrail,
		translator:  opts.Translator,
		transcriber: opts.Transcriber,
		store:       opts.Store,
		hybrid:      hc,
		log:         opts.Logger,
		now:         time.Now,
	}
}

// Register mounts every route on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Manner analysis
	api.Get("/countries", h.Countries)
	api.Post("/analyze", h.Analyze)
	api.Post("/enhanced-analyze", h.EnhancedAnalyze)
	api.Post("/guardrails-check", h.GuardrailsCheck)
	api.Post("/hybrid-analyze", h.HybridAnalyze)
	api.Post("/translate-analyze", h.TranslateAnalyze)
	api.Post("/transcribe", h.Transcribe)

	// Persisted state
	api.Get("/chats", h.ListChats)
	api.Post("/chats", h.CreateChat)
	api.Get("/chats/:id", h.GetChat)
	api.Post("/chats/:id/read", h.MarkChatRead)

	api.Get("/messages", h.ListMessages)
	api.Post("/messages", h.SendMessage)

	api.Get("/user-profile", h.GetUserProfile)
	api.Post("/user-profile", h.SaveUserProfile)

	api.Get("/chat-request", h.ListChatRequests)
	api.Post("/chat-request", h.CreateChatRequest)
	api.Put("/chat-request", h.RespondChatRequest)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if h.store != nil {
		if err := h.store.Ping(c.UserContext()); err != nil {
			h.log.Warn().Err(err).Msg("store ping failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "store": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "store": "ok"})
}

// ErrorHandler renders unhandled errors as {"error": msg}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// storeError maps a persistence failure onto a 404 or a logged 500.
func (h *Handler) storeError(c *fiber.Ctx, err error, what string) error {
	if errors.Is(err, database.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, what+" not found")
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("store operation failed")
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to access "+what)
}

// parseBody decodes and validates the JSON body into out. The returned
// *fiber.Error is rendered by ErrorHandler.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.Validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
