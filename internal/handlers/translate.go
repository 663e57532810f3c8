package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/utils"
)

// TranslateAnalyze translates the text and analyzes the original in parallel.
// Translation failure is a 500; the analysis cannot fail.
func (h *Handler) TranslateAnalyze(c *fiber.Ctx) error {
	var req models.TranslateAnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var (
		feedback models.AnalysisResult
		tr       models.Translation
	)
	g, gctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		feedback = h.analyzer.Analyze(gctx, models.AnalysisRequest{
			Message:       req.Text,
			TargetCountry: req.TargetCountry,
			Language:      req.SourceLanguage,
		})
		return nil
	})
	g.Go(func() error {
		var err error
		tr, err = h.translator.Translate(gctx, req.Text, req.SourceLanguage, req.TargetLanguage)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Error().Err(err).Str("target_language", req.TargetLanguage).Msg("translation failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Translation failed: "+err.Error())
	}

	detected := tr.SourceLanguage
	if detected == "" {
		detected = req.SourceLanguage
	}
	return c.JSON(models.TranslateAnalyzeResponse{
		OriginalText:     req.Text,
		TranslatedText:   tr.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.TargetLanguage,
		MannerFeedback:   feedback,
	})
}

// Transcribe accepts a multipart "audio" file and an optional "languageCode".
func (h *Handler) Transcribe(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "audio file is required")
	}
	if h.transcriber == nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "transcription is not configured")
	}

	f, err := fh.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "could not read audio file")
	}
	defer f.Close()
	audio, err := io.ReadAll(f)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "could not read audio file")
	}

	text, err := h.transcriber.Transcribe(c.UserContext(), audio, fh.Filename, c.FormValue("languageCode"))
	if err != nil {
		h.log.Error().Err(err).Str("file", fh.Filename).Msg("transcription failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Transcription failed: "+err.Error())
	}
	return c.JSON(models.TranscribeResponse{Text: text})
}
