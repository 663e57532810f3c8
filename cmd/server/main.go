package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/config"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/handlers"
	applog "github.com/hmmwtf/team30-aws-hackathon-sub000/internal/logger"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/relay"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "culturechat",
		Short: "CultureChat backend: manner-check API and chat relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "relay",
		Short: "Run the WebSocket chat relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay()
		},
	})

	analyzeCmd := &cobra.Command{
		Use:   "analyze [message]",
		Short: "Analyze one message and print the verdict as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country, _ := cmd.Flags().GetString("country")
			relationship, _ := cmd.Flags().GetString("relationship")
			language, _ := cmd.Flags().GetString("language")
			return runAnalyze(cmd.Context(), models.AnalysisRequest{
				Message:       args[0],
				TargetCountry: country,
				Relationship:  relationship,
				Language:      language,
			})
		},
	}
	analyzeCmd.Flags().StringP("country", "c", "US", "Recipient country code")
	analyzeCmd.Flags().StringP("relationship", "r", models.RelationshipFriend, "Relationship to the recipient")
	analyzeCmd.Flags().StringP("language", "l", models.DefaultLanguage, "Language of the feedback")
	rootCmd.AddCommand(analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(service string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, applog.New(service, cfg.LogLevel), nil
}

func runServe() error {
	cfg, log, err := setup("culturechat-api")
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSConnectTimeout)
	if err != nil {
		return err
	}
	store, err := newStore(ctx, cfg, awsCfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	svc := newServices(cfg, awsCfg, log)
	h := handlers.New(handlers.Options{
		Analyzer:    svc.analyzer,
		Guardrail:   svc.guardrail,
		Translator:  svc.translator,
		Transcriber: svc.transcriber,
		Store:       store,
		Logger:      log,
	})

	app := fiber.New(fiber.Config{
		AppName:               "CultureChat API",
		ErrorHandler:          handlers.ErrorHandler,
		BodyLimit:             25 * 1024 * 1024,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	h.Register(app)

	log.Info().
		Str("env", cfg.Environment).
		Str("llm_provider", cfg.LLMProvider).
		Str("store", cfg.StoreDriver).
		Bool("guardrail", cfg.GuardrailConfigured()).
		Str("port", cfg.Port).
		Msg("API server starting")
	return listen(ctx, app, cfg.Port, log)
}

func runRelay() error {
	cfg, log, err := setup("culturechat-relay")
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSConnectTimeout)
	if err != nil {
		return err
	}
	store, err := newStore(ctx, cfg, awsCfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	app := relay.NewApp(relay.NewHub(store, log))
	log.Info().Str("port", cfg.RelayPort).Str("store", cfg.StoreDriver).Msg("chat relay starting")
	return listen(ctx, app, cfg.RelayPort, log)
}

// listen serves app until ctx is cancelled, then shuts down gracefully.
func listen(ctx context.Context, app *fiber.App, port string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(":" + port) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func runAnalyze(ctx context.Context, req models.AnalysisRequest) error {
	cfg, log, err := setup("culturechat-cli")
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSConnectTimeout)
	if err != nil {
		return err
	}
	svc := newServices(cfg, awsCfg, log)

	out := struct {
		Guardrail models.GuardrailResult `json:"guardrail"`
		Analysis  models.AnalysisResult  `json:"analysis"`
	}{
		Guardrail: svc.guardrail.Check(ctx, req.Message, req.TargetCountry, req.Relationship),
		Analysis:  svc.analyzer.Analyze(ctx, req),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
