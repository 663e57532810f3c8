package culture

import (
	"slices"
	"strings"
)

type RelationshipMannerCriteria struct {
	Relationship           string   `json:"relationship"`
	Label                  string   `json:"label"`
	FormalityLevel         string   `json:"formalityLevel"`
	RespectLevel           string   `json:"respectLevel"`
	LanguageStyle          []string `json:"languageStyle"`
	AvoidExpressions       []string `json:"avoidExpressions"`
	RecommendedExpressions []string `json:"recommendedExpressions"`
	CulturalNotes          string   `json:"culturalNotes"`
}

var relationshipCriteria = map[string]RelationshipMannerCriteria{
	"boss": {
		Relationship:           "boss",
		Label:                  "직장 상사 (boss)",
		FormalityLevel:         "formal",
		RespectLevel:           "high",
		LanguageStyle:          []string{"honorific", "concise", "polite requests"},
		AvoidExpressions:       []string{"slang", "emoji", "casual speech", "commands", "complaints about work"},
		RecommendedExpressions: []string{"Could you please...", "Thank you for your guidance", "I would appreciate it if..."},
		CulturalNotes:          "Keep a clear professional distance and soften requests.",
	},
	"colleague": {
		Relationship:           "colleague",
		Label:                  "직장 동료 (colleague)",
		FormalityLevel:         "semi-formal",
		RespectLevel:           "medium",
		LanguageStyle:          []string{"polite", "friendly", "collaborative"},
		AvoidExpressions:       []string{"gossip", "overly personal questions", "blunt criticism"},
		RecommendedExpressions: []string{"Would you mind...", "Thanks for your help", "Let's work on it together"},
		CulturalNotes:          "Friendly but professional; avoid topics that create workplace tension.",
	},
	"friend": {
		Relationship:           "friend",
		Label:                  "친구 (friend)",
		FormalityLevel:         "casual",
		RespectLevel:           "medium",
		LanguageStyle:          []string{"casual", "warm", "humorous"},
		AvoidExpressions:       []string{"insults even as jokes", "sensitive personal remarks"},
		RecommendedExpressions: []string{"How have you been?", "Let's hang out", "Miss you"},
		CulturalNotes:          "Casual speech is fine, but humour does not always translate across cultures.",
	},
	"lover": {
		Relationship:           "lover",
		Label:                  "연인 (lover)",
		FormalityLevel:         "casual",
		RespectLevel:           "medium",
		LanguageStyle:          []string{"affectionate", "intimate", "caring"},
		AvoidExpressions:       []string{"controlling language", "comparisons with exes", "passive aggression"},
		RecommendedExpressions: []string{"I miss you", "Thinking of you", "Take care"},
		CulturalNotes:          "Expressions of affection vary in directness between cultures.",
	},
	"parent": {
		Relationship:           "parent",
		Label:                  "부모님 (parent)",
		FormalityLevel:         "semi-formal",
		RespectLevel:           "high",
		LanguageStyle:          []string{"respectful", "warm", "caring"},
		AvoidExpressions:       []string{"rude speech", "dismissive replies", "profanity"},
		RecommendedExpressions: []string{"Thank you for everything", "Please take care of your health", "I love you"},
		CulturalNotes:          "Respect for elders matters strongly in many cultures.",
	},
	"stranger": {
		Relationship:           "stranger",
		Label:                  "처음 만난 사람 (stranger)",
		FormalityLevel:         "formal",
		RespectLevel:           "high",
		LanguageStyle:          []string{"polite", "neutral", "clear"},
		AvoidExpressions:       []string{"personal questions", "slang", "assumptions about background"},
		RecommendedExpressions: []string{"Nice to meet you", "Excuse me", "Thank you"},
		CulturalNotes:          "Default to polite, neutral language until rapport is built.",
	},
}

// GetRelationshipCriteria returns the criteria for a relationship tag, or nil when unknown.
func GetRelationshipCriteria(relationship string) *RelationshipMannerCriteria {
	c, ok := relationshipCriteria[strings.ToLower(strings.TrimSpace(relationship))]
	if !ok {
		return nil
	}
	c.LanguageStyle = slices.Clone(c.LanguageStyle)
	c.AvoidExpressions = slices.Clone(c.AvoidExpressions)
	c.RecommendedExpressions = slices.Clone(c.RecommendedExpressions)
	return &c
}

// GenericRelationshipCriteria stands in for an unknown relationship tag.
func GenericRelationshipCriteria(relationship string) RelationshipMannerCriteria {
	label := relationship
	if label == "" {
		label = "unspecified"
	}
	return RelationshipMannerCriteria{
		Relationship:           relationship,
		Label:                  label,
		FormalityLevel:         "semi-formal",
		RespectLevel:           "medium",
		LanguageStyle:          []string{"polite"},
		AvoidExpressions:       []string{"profanity", "discriminatory remarks"},
		RecommendedExpressions: []string{"Thank you", "Please"},
		CulturalNotes:          "Use polite, neutral language.",
	}
}
