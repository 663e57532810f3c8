package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/rs/zerolog"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/cache"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/config"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/database"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/services"
)

// newStore opens the configured document store.
func newStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (database.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return database.NewMemoryStore(), nil
	case "mongo":
		return database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "dynamodb":
		return database.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), database.DynamoTables{
			Chats:        cfg.DynamoChatsTable,
			Messages:     cfg.DynamoMessagesTable,
			Users:        cfg.DynamoUsersTable,
			ChatRequests: cfg.DynamoChatRequestsTable,
		}), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newLLM(cfg *config.Config, bedrock *bedrockruntime.Client) services.LLM {
	if cfg.LLMProvider == "openai" {
		return services.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return services.NewBedrockLLM(bedrock, cfg.BedrockModelID, cfg.LLMTimeout)
}

// serviceSet is everything the API handlers depend on.
type serviceSet struct {
	analyzer    *services.Analyzer
	guardrail   *services.GuardrailService
	translator  services.Translator
	transcriber *services.Transcriber
}

func newServices(cfg *config.Config, awsCfg aws.Config, log zerolog.Logger) serviceSet {
	bedrock := bedrockruntime.NewFromConfig(awsCfg)

	analyzer := services.NewAnalyzer(newLLM(cfg, bedrock), services.AnalyzerOptions{
		Cache:  cache.New[models.AnalysisResult](cfg.AnalysisCacheTTL, cfg.AnalysisCacheSize),
		Retry:  retry.Policy{MaxRetries: cfg.RetryMax, BaseDelay: cfg.RetryBaseDelay},
		Logger: log.With().Str("component", "analyzer").Logger(),
	})

	guardrail := services.NewGuardrailService(bedrock, cfg.GuardrailID, cfg.GuardrailVersion, cfg.GuardrailTimeout,
		log.With().Str("component", "guardrail").Logger())

	translator := services.ChainTranslator{
		services.NewAWSTranslator(translate.NewFromConfig(awsCfg), cfg.TranslateTimeout),
		services.NewPublicTranslator(services.PublicTranslatorOptions{
			LibreURL:    cfg.LibreTranslateURL,
			LibreAPIKey: cfg.LibreTranslateAPIKey,
			Timeout:     cfg.TranslateTimeout,
		}),
	}

	transcriber := services.NewTranscriber(s3.NewFromConfig(awsCfg), transcribe.NewFromConfig(awsCfg), services.TranscriberOptions{
		Bucket:      cfg.TranscribeBucket,
		PollTimeout: cfg.TranscribePollTimeout,
		Logger:      log.With().Str("component", "transcriber").Logger(),
	})

	return serviceSet{analyzer: analyzer, guardrail: guardrail, translator: translator, transcriber: transcriber}
}
