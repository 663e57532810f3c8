package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/metrics"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/retry"
)

// Guardrail reasons and sources reported in GuardrailResult.
const (
	ReasonProfanity          = "profanity"
	ReasonSensitiveWorkplace = "sensitive_topic_workplace"
	ReasonGuardrail          = "guardrail_intervened"

	SourceManaged  = "managed"
	SourceFallback = "fallback"
)

// The fallback filter is literal substring containment on the lowercased
// message, with no tokenization or stemming. False positives are expected.
var (
	profanityList = []string{
		"씨발", "시발", "ㅅㅂ", "개새끼", "병신", "ㅂㅅ", "좆", "지랄", "미친놈", "미친년", "꺼져",
		"fuck", "shit", "bitch", "asshole", "bastard", "dickhead", "shut up",
	}
	sensitiveKeywords = []string{
		"정치", "종교", "연봉", "월급", "나이가", "몇 살", "결혼 안", "이혼", "임신", "대통령", "선거",
		"politic", "religion", "salary", "how old", "divorce", "pregnan", "election",
	}
)

// politeAlternatives are offered whenever a message is blocked.
var politeAlternatives = []models.Alternative{
	{
		Text:           "죄송하지만, 이 부분은 다시 한번 이야기해 보면 좋겠습니다.",
		TranslatedText: "I'm sorry, but I'd like us to talk about this once more.",
		Reason:         "정중한 표현으로 감정을 전달합니다.",
		FormalityLevel: models.FormalityFormal,
	},
	{
		Text:           "솔직히 조금 속상했어요. 다른 방법을 찾아봐요.",
		TranslatedText: "Honestly, I was a bit upset. Let's find another way.",
		Reason:         "비난 대신 느낀 감정을 표현합니다.",
		FormalityLevel: models.FormalitySemiFormal,
	},
	{
		Text:           "아 진짜 답답하다! 우리 잠깐 쉬었다 얘기하자.",
		TranslatedText: "Ugh, this is frustrating! Let's take a break and talk later.",
		Reason:         "욕설 없이 친근하게 답답함을 표현합니다.",
		FormalityLevel: models.FormalityCasual,
	},
}

// GuardrailApplier is the subset of the Bedrock runtime client used for moderation.
type GuardrailApplier interface {
	ApplyGuardrail(ctx context.Context, in *bedrockruntime.ApplyGuardrailInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ApplyGuardrailOutput, error)
}

// GuardrailService runs the moderation pre-check. A nil client or empty
// guardrail ID means only the fallback filter is used.
type GuardrailService struct {
	client  GuardrailApplier
	id      string
	version string
	timeout time.Duration
	log     zerolog.Logger
}

func NewGuardrailService(client GuardrailApplier, id, version string, timeout time.Duration, log zerolog.Logger) *GuardrailService {
	return &GuardrailService{client: client, id: id, version: version, timeout: timeout, log: log}
}

var errGuardrailUnconfigured = errors.New("guardrail not configured")

// Check never fails; when the managed call is unavailable it degrades to FallbackCheck.
func (g *GuardrailService) Check(ctx context.Context, message, targetCountry, relationship string) models.GuardrailResult {
	res, err := g.managed(ctx, message)
	if err != nil {
		if !errors.Is(err, errGuardrailUnconfigured) {
			c := retry.Classify(err)
			g.log.Warn().Err(err).Str("error_type", string(c.Type)).Str("country", targetCountry).
				Msg("managed guardrail failed, using fallback filter")
		}
		res = FallbackCheck(message, relationship)
	}
	metrics.GuardrailDecisions.WithLabelValues(res.Source, res.Type).Inc()
	return res
}

func (g *GuardrailService) managed(ctx context.Context, message string) (models.GuardrailResult, error) {
	if g == nil || g.client == nil || g.id == "" {
		return models.GuardrailResult{}, errGuardrailUnconfigured
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.client.ApplyGuardrail(ctx, &bedrockruntime.ApplyGuardrailInput{
		GuardrailIdentifier: aws.String(g.id),
		GuardrailVersion:    aws.String(g.version),
		Source:              types.GuardrailContentSourceInput,
		Content: []types.GuardrailContentBlock{
			&types.GuardrailContentBlockMemberText{Value: types.GuardrailTextBlock{Text: aws.String(message)}},
		},
	})
	if err != nil {
		return models.GuardrailResult{}, err
	}

	if out.Action == types.GuardrailActionGuardrailIntervened {
		return models.GuardrailResult{
			Type:         models.TypeBlocked,
			Reason:       ReasonGuardrail,
			Alternatives: cannedAlternatives(),
			Confidence:   0.95,
			Source:       SourceManaged,
		}, nil
	}
	return models.GuardrailResult{Type: models.TypeAllowed, Confidence: 0.9, Source: SourceManaged}, nil
}

// FallbackCheck is the fixed-list content filter.
func FallbackCheck(message, relationship string) models.GuardrailResult {
	lower := strings.ToLower(message)
	if containsAny(lower, profanityList) {
		return models.GuardrailResult{
			Type:         models.TypeBlocked,
			Reason:       ReasonProfanity,
			Alternatives: cannedAlternatives(),
			Confidence:   0.9,
			Source:       SourceFallback,
		}
	}
	if isWorkplace(relationship) && containsAny(lower, sensitiveKeywords) {
		return models.GuardrailResult{
			Type:       models.TypeWarning,
			Reason:     ReasonSensitiveWorkplace,
			Confidence: 0.7,
			Source:     SourceFallback,
		}
	}
	return models.GuardrailResult{Type: models.TypeAllowed, Confidence: 0.8, Source: SourceFallback}
}

func cannedAlternatives() []models.Alternative {
	return append([]models.Alternative(nil), politeAlternatives...)
}

func isWorkplace(relationship string) bool {
	return relationship == models.RelationshipBoss || relationship == models.RelationshipColleague
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
