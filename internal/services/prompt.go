package services

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/culture"
)

const systemPrompt = "You are an expert in cross-cultural communication and etiquette. You always answer with a single JSON object and nothing else."

const enhancedTemplate = `Evaluate whether the following message is appropriate to send to a {{.Relationship.Label}} from {{.Culture.Country}} ({{.Culture.Code}}).

Message: "{{.Message}}"

Cultural context for {{.Culture.Country}}:
- Communication style: {{.Culture.CommunicationStyle}}
- Politeness level: {{.Culture.PolitenessLevel}}, directness: {{.Culture.Directness}}, hierarchy importance: {{.Culture.HierarchyImportance}}
- Sensitive topics: {{join .Culture.SensitiveTopics ", "}}
- Taboos: {{join .Culture.Taboos ", "}}

Relationship expectations ({{.Relationship.Label}}):
- Formality: {{.Relationship.FormalityLevel}}, respect: {{.Relationship.RespectLevel}}
- Language style: {{join .Relationship.LanguageStyle ", "}}
- Recommended expressions: {{join .Relationship.RecommendedExpressions ", "}}
- Expressions to avoid: {{join .Relationship.AvoidExpressions ", "}}
- Notes: {{.Relationship.CulturalNotes}}

Write every human-readable field in the language with code "{{.Language}}". Translate the message into the main language of {{.Culture.Country}} as basicTranslation.
Your entire reply must be this JSON object:
{"type": "good" or "warning", "message": "short feedback", "culturalReason": "why", "severity": "low" or "medium" or "high", "suggestions": ["tip"], "alternatives": [{"text": "better phrasing", "translatedText": "it in the recipient's language", "reason": "why it is better", "formalityLevel": "formal" or "semi-formal" or "casual"}], "confidence": number between 0 and 1, "basicTranslation": "translation"}`

const basicTemplate = `Evaluate whether the following message is culturally appropriate for someone from {{.Culture.Country}} ({{.Culture.Code}}).

Message: "{{.Message}}"

Cultural context for {{.Culture.Country}}:
- Communication style: {{.Culture.CommunicationStyle}}
- Sensitive topics: {{join .Culture.SensitiveTopics ", "}}
- Taboos: {{join .Culture.Taboos ", "}}

Write every human-readable field in the language with code "{{.Language}}".
Your entire reply must be this JSON object:
{"type": "good" or "warning", "message": "short feedback", "suggestion": "better phrasing if needed", "culturalReason": "why"}`

var promptTemplates = template.Must(
	template.New("prompts").Funcs(template.FuncMap{"join": strings.Join}).Parse(
		`{{define "enhanced"}}` + enhancedTemplate + `{{end}}{{define "basic"}}` + basicTemplate + `{{end}}`,
	),
)

// PromptData is everything the analysis prompts embed.
type PromptData struct {
	Message      string
	Language     string
	Culture      culture.CulturalData
	Relationship culture.RelationshipMannerCriteria
}

// NewPromptData looks up the static tables, degrading to generic entries for unknown keys.
func NewPromptData(message, country, relationship, language string) PromptData {
	d := PromptData{Message: message, Language: language}
	if c := culture.GetCulturalData(country); c != nil {
		d.Culture = *c
	} else {
		d.Culture = culture.GenericCulturalData(country)
	}
	if r := culture.GetRelationshipCriteria(relationship); r != nil {
		d.Relationship = *r
	} else {
		d.Relationship = culture.GenericRelationshipCriteria(relationship)
	}
	return d
}

// RenderPrompt executes the named prompt ("enhanced" or "basic").
func RenderPrompt(name string, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
