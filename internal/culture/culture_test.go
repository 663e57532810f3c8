package culture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCulturalData_US(t *testing.T) {
	d := GetCulturalData("US")
	require.NotNil(t, d)
	assert.Equal(t, "US", d.Code)
}

func TestGetCulturalData_AllSupported(t *testing.T) {
	codes := []string{"US", "JP", "CN", "GB", "DE", "FR", "KR", "IT", "RU", "IN", "BR", "AU"}
	assert.ElementsMatch(t, codes, SupportedCountries())

	for _, code := range codes {
		d := GetCulturalData(code)
		require.NotNil(t, d, code)
		assert.Equal(t, code, d.Code)
		assert.Contains(t, []string{"high", "medium", "low"}, d.PolitenessLevel, code)
		assert.Contains(t, []string{"direct", "indirect"}, d.Directness, code)
		assert.Contains(t, []string{"close", "medium", "distant"}, d.PersonalSpace, code)
		assert.Contains(t, []string{"punctual", "flexible"}, d.TimeOrientation, code)
		assert.Contains(t, []string{"high", "medium", "low"}, d.HierarchyImportance, code)
		assert.NotEmpty(t, d.Language, code)
	}
}

func TestGetCulturalData_Unsupported(t *testing.T) {
	assert.Nil(t, GetCulturalData("XX"))
	assert.Nil(t, GetCulturalData(""))
}

func TestGetCulturalData_CaseInsensitive(t *testing.T) {
	d := GetCulturalData(" jp ")
	require.NotNil(t, d)
	assert.Equal(t, "JP", d.Code)
}

func TestGetCulturalData_ReturnsCopy(t *testing.T) {
	d := GetCulturalData("KR")
	require.NotNil(t, d)
	d.Code = "ZZ"
	assert.Equal(t, "KR", GetCulturalData("KR").Code)
}

func TestGetCulturalData_SlicesAreNotShared(t *testing.T) {
	d := GetCulturalData("KR")
	require.NotNil(t, d)
	require.NotEmpty(t, d.SensitiveTopics)
	require.NotEmpty(t, d.Taboos)
	topic, taboo := d.SensitiveTopics[0], d.Taboos[0]

	d.SensitiveTopics[0] = "mutated"
	d.Taboos[0] = "mutated"

	again := GetCulturalData("KR")
	assert.Equal(t, topic, again.SensitiveTopics[0])
	assert.Equal(t, taboo, again.Taboos[0])
}

func TestGetRelationshipCriteria_SlicesAreNotShared(t *testing.T) {
	c := GetRelationshipCriteria("boss")
	require.NotNil(t, c)
	want := c.AvoidExpressions[0]
	c.AvoidExpressions[0] = "mutated"
	c.LanguageStyle = append(c.LanguageStyle[:0], "mutated")
	assert.Equal(t, want, GetRelationshipCriteria("boss").AvoidExpressions[0])
	assert.NotEqual(t, "mutated", GetRelationshipCriteria("boss").LanguageStyle[0])
}

func TestGetRelationshipCriteria(t *testing.T) {
	for _, r := range []string{"boss", "colleague", "friend", "lover", "parent", "stranger"} {
		c := GetRelationshipCriteria(r)
		require.NotNil(t, c, r)
		assert.Equal(t, r, c.Relationship)
		assert.NotEmpty(t, c.RecommendedExpressions, r)
		assert.NotEmpty(t, c.AvoidExpressions, r)
	}
	assert.Nil(t, GetRelationshipCriteria("rival"))
}

func TestGenericFallbacks(t *testing.T) {
	d := GenericCulturalData("xx")
	assert.Equal(t, "XX", d.Code)
	c := GenericRelationshipCriteria("")
	assert.Equal(t, "unspecified", c.Label)
}
