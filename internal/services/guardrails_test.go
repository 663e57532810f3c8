package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

type fakeApplier struct {
	action types.GuardrailAction
	err    error
	input  *bedrockruntime.ApplyGuardrailInput
}

func (f *fakeApplier) ApplyGuardrail(_ context.Context, in *bedrockruntime.ApplyGuardrailInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ApplyGuardrailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.ApplyGuardrailOutput{Action: f.action}, nil
}

func TestFallbackCheck_ProfanityIsBlocked(t *testing.T) {
	for _, msg := range []string{"what the FUCK is this", "이 병신아", "야 시발"} {
		res := FallbackCheck(msg, models.RelationshipFriend)
		assert.Equal(t, models.TypeBlocked, res.Type, msg)
		assert.Equal(t, ReasonProfanity, res.Reason)
		require.Len(t, res.Alternatives, 3)
		for _, alt := range res.Alternatives {
			assert.NotEmpty(t, alt.Text)
			assert.NotEmpty(t, alt.TranslatedText)
			assert.NotEmpty(t, alt.Reason)
			assert.NotEmpty(t, alt.FormalityLevel)
		}
	}
}

func TestFallbackCheck_SensitiveTopicDependsOnRelationship(t *testing.T) {
	msg := "부장님 연봉이 얼마예요?"

	boss := FallbackCheck(msg, models.RelationshipBoss)
	assert.Equal(t, models.TypeWarning, boss.Type)
	assert.Equal(t, ReasonSensitiveWorkplace, boss.Reason)

	colleague := FallbackCheck("What do you think about politics?", models.RelationshipColleague)
	assert.Equal(t, models.TypeWarning, colleague.Type)

	friend := FallbackCheck(msg, models.RelationshipFriend)
	assert.Equal(t, models.TypeAllowed, friend.Type)
	assert.Empty(t, friend.Reason)
}

func TestFallbackCheck_CleanMessageAllowed(t *testing.T) {
	res := FallbackCheck("좋은 아침입니다!", models.RelationshipBoss)
	assert.Equal(t, models.TypeAllowed, res.Type)
	assert.Equal(t, SourceFallback, res.Source)
}

func TestFallbackCheck_AlternativesAreCopies(t *testing.T) {
	res := FallbackCheck("shit", models.RelationshipFriend)
	res.Alternatives[0].Text = "mutated"
	assert.NotEqual(t, "mutated", FallbackCheck("shit", models.RelationshipFriend).Alternatives[0].Text)
}

func TestGuardrailService_Managed(t *testing.T) {
	f := &fakeApplier{action: types.GuardrailActionGuardrailIntervened}
	g := NewGuardrailService(f, "gr-123", "DRAFT", 0, zerolog.Nop())

	res := g.Check(context.Background(), "anything", "US", models.RelationshipFriend)
	assert.Equal(t, models.TypeBlocked, res.Type)
	assert.Equal(t, ReasonGuardrail, res.Reason)
	assert.Equal(t, SourceManaged, res.Source)
	assert.Len(t, res.Alternatives, 3)

	require.NotNil(t, f.input)
	assert.Equal(t, "gr-123", aws.ToString(f.input.GuardrailIdentifier))
	assert.Equal(t, types.GuardrailContentSourceInput, f.input.Source)

	f.action = types.GuardrailActionNone
	res = g.Check(context.Background(), "hello", "US", models.RelationshipFriend)
	assert.Equal(t, models.TypeAllowed, res.Type)
	assert.Equal(t, SourceManaged, res.Source)
}

func TestGuardrailService_FallsBackOnError(t *testing.T) {
	g := NewGuardrailService(&fakeApplier{err: errors.New("throttled")}, "gr-123", "1", 0, zerolog.Nop())

	res := g.Check(context.Background(), "연봉 얼마 받으세요?", "KR", models.RelationshipBoss)
	assert.Equal(t, models.TypeWarning, res.Type)
	assert.Equal(t, SourceFallback, res.Source)
}

func TestGuardrailService_Unconfigured(t *testing.T) {
	f := &fakeApplier{action: types.GuardrailActionGuardrailIntervened}
	g := NewGuardrailService(f, "", "DRAFT", 0, zerolog.Nop())

	res := g.Check(context.Background(), "hello", "US", models.RelationshipFriend)
	assert.Equal(t, models.TypeAllowed, res.Type)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Nil(t, f.input)
}
