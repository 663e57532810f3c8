// Package culture holds the static country and relationship tables that
// ground the cultural manner analysis. The tables are read-only after init.
package culture

import (
	"slices"
	"sort"
	"strings"
)

type CulturalData struct {
	Country             string   `json:"country"`
	Code                string   `json:"code"`
	Language            string   `json:"language"`
	SensitiveTopics     []string `json:"sensitiveTopic"`
	CommunicationStyle  string   `json:"communicationStyle"`
	Taboos              []string `json:"taboos"`
	PolitenessLevel     string   `json:"politenessLevel"`     // high | medium | low
	Directness          string   `json:"directness"`          // direct | indirect
	PersonalSpace       string   `json:"personalSpace"`       // close | medium | distant
	TimeOrientation     string   `json:"timeOrientation"`     // punctual | flexible
	HierarchyImportance string   `json:"hierarchyImportance"` // high | medium | low
}

var culturalData = map[string]CulturalData{
	"US": {
		Country:             "United States",
		Code:                "US",
		Language:            "en",
		SensitiveTopics:     []string{"politics", "religion", "race", "gun control", "personal income"},
		CommunicationStyle:  "Direct and informal; first names are common even at work.",
		Taboos:              []string{"asking about age or salary", "comments on weight or appearance", "racial stereotypes"},
		PolitenessLevel:     "medium",
		Directness:          "direct",
		PersonalSpace:       "distant",
		TimeOrientation:     "punctual",
		HierarchyImportance: "low",
	},
	"JP": {
		Country:             "Japan",
		Code:                "JP",
		Language:            "ja",
		SensitiveTopics:     []string{"World War II", "territorial disputes", "the imperial family", "personal income"},
		CommunicationStyle:  "Indirect and context-heavy; refusals are softened and honorifics (keigo) matter.",
		Taboos:              []string{"blunt refusals", "pointing out mistakes publicly", "talking about death casually"},
		PolitenessLevel:     "high",
		Directness:          "indirect",
		PersonalSpace:       "distant",
		TimeOrientation:     "punctual",
		HierarchyImportance: "high",
	},
	"CN": {
		Country:             "China",
		Code:                "CN",
		Language:            "zh",
		SensitiveTopics:     []string{"politics", "Taiwan", "Tibet", "government criticism"},
		CommunicationStyle:  "Indirect; saving face and group harmony come first.",
		Taboos:              []string{"causing someone to lose face", "the number four", "gifting clocks"},
		PolitenessLevel:     "high",
		Directness:          "indirect",
		PersonalSpace:       "close",
		TimeOrientation:     "flexible",
		HierarchyImportance: "high",
	},
	"GB": {
		Country:             "United Kingdom",
		Code:                "GB",
		Language:            "en",
		SensitiveTopics:     []string{"the royal family", "Brexit", "class", "personal income"},
		CommunicationStyle:  "Understated and polite; heavy use of hedging and irony.",
		Taboos:              []string{"queue jumping", "boasting", "overly personal questions"},
		PolitenessLevel:     "high",
		Directness:          "indirect",
		PersonalSpace:       "distant",
		TimeOrientation:     "punctual",
		HierarchyImportance: "medium",
	},
	"DE": {
		Country:             "Germany",
		Code:                "DE",
		Language:            "de",
		SensitiveTopics:     []string{"Nazi history", "World War II", "personal income"},
		CommunicationStyle:  "Direct and factual; formal address (Sie) until invited otherwise.",
		Taboos:              []string{"Nazi references or jokes", "being late", "mixing private and work life"},
		PolitenessLevel:     "medium",
		Directness:          "direct",
		PersonalSpace:       "distant",
		TimeOrientation:     "punctual",
		HierarchyImportance: "medium",
	},
	"FR": {
		Country:             "France",
		Code:                "FR",
		Language:            "fr",
		SensitiveTopics:     []string{"personal income", "religion", "immigration"},
		CommunicationStyle:  "Articulate and formal at first; greetings (bonjour) are expected.",
		Taboos:              []string{"skipping greetings", "discussing money", "using tu with strangers"},
		PolitenessLevel:     "high",
		Directness:          "direct",
		PersonalSpace:       "close",
		TimeOrientation:     "flexible",
		HierarchyImportance: "medium",
	},
	"KR": {
		Country:             "South Korea",
		Code:                "KR",
		Language:            "ko",
		SensitiveTopics:     []string{"North Korea", "Japan relations", "military service", "age and salary"},
		CommunicationStyle:  "Hierarchical; honorific speech (jondaetmal) toward elders and seniors.",
		Taboos:              []string{"casual speech (banmal) to seniors", "writing names in red ink", "the number four"},
		PolitenessLevel:     "high",
		Directness:          "indirect",
		PersonalSpace:       "close",
		TimeOrientation:     "punctual",
		HierarchyImportance: "high",
	},
	"IT": {
		Country:             "Italy",
		Code:                "IT",
		Language:            "it",
		SensitiveTopics:     []string{"the Mafia", "politics", "religion"},
		CommunicationStyle:  "Expressive and warm; relationships precede business.",
		Taboos:              []string{"Mafia stereotypes", "criticising Italian food", "rushing meals"},
		PolitenessLevel:     "medium",
		Directness:          "direct",
		PersonalSpace:       "close",
		TimeOrientation:     "flexible",
		HierarchyImportance: "medium",
	},
	"RU": {
		Country:             "Russia",
		Code:                "RU",
		Language:            "ru",
		SensitiveTopics:     []string{"politics", "war", "the Soviet era"},
		CommunicationStyle:  "Formal with strangers (patronymics), warm and direct among friends.",
		Taboos:              []string{"even numbers of flowers", "smiling at strangers without reason", "criticising the country"},
		PolitenessLevel:     "medium",
		Directness:          "direct",
		PersonalSpace:       "close",
		TimeOrientation:     "flexible",
		HierarchyImportance: "high",
	},
	"IN": {
		Country:             "India",
		Code:                "IN",
		Language:            "hi",
		SensitiveTopics:     []string{"religion", "caste", "Pakistan relations", "politics"},
		CommunicationStyle:  "Indirect and respectful; a direct no is often avoided.",
		Taboos:              []string{"beef references with Hindus", "using the left hand for giving", "caste remarks"},
		PolitenessLevel:     "high",
		Directness:          "indirect",
		PersonalSpace:       "close",
		TimeOrientation:     "flexible",
		HierarchyImportance: "high",
	},
	"BR": {
		Country:             "Brazil",
		Code:                "BR",
		Language:            "pt",
		SensitiveTopics:     []string{"politics", "poverty", "Argentina rivalry"},
		CommunicationStyle:  "Warm, expressive and relationship-oriented.",
		Taboos:              []string{"the OK hand gesture", "assuming Spanish is spoken", "being cold or distant"},
		PolitenessLevel:     "medium",
		Directness:          "indirect",
		PersonalSpace:       "close",
		TimeOrientation:     "flexible",
		HierarchyImportance: "medium",
	},
	"AU": {
		Country:             "Australia",
		Code:                "AU",
		Language:            "en",
		SensitiveTopics:     []string{"Indigenous issues", "immigration", "politics"},
		CommunicationStyle:  "Casual and egalitarian; self-deprecating humour is common.",
		Taboos:              []string{"showing off", "tall poppy behaviour", "comparisons to the UK or US"},
		PolitenessLevel:     "low",
		Directness:          "direct",
		PersonalSpace:       "medium",
		TimeOrientation:     "flexible",
		HierarchyImportance: "low",
	},
}

// GetCulturalData returns the entry for a country code, or nil when unsupported.
// Codes are matched case-insensitively.
func GetCulturalData(code string) *CulturalData {
	d, ok := culturalData[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil
	}
	d.SensitiveTopics = slices.Clone(d.SensitiveTopics)
	d.Taboos = slices.Clone(d.Taboos)
	return &d
}

// SupportedCountries returns every supported country code in sorted order.
func SupportedCountries() []string {
	codes := make([]string, 0, len(culturalData))
	for code := range culturalData {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GenericCulturalData stands in for an unsupported country.
func GenericCulturalData(code string) CulturalData {
	return CulturalData{
		Country:             strings.ToUpper(code),
		Code:                strings.ToUpper(code),
		Language:            "en",
		SensitiveTopics:     []string{"politics", "religion", "personal income"},
		CommunicationStyle:  "Polite and neutral.",
		Taboos:              []string{"offensive language", "discriminatory remarks"},
		PolitenessLevel:     "medium",
		Directness:          "direct",
		PersonalSpace:       "medium",
		TimeOrientation:     "punctual",
		HierarchyImportance: "medium",
	}
}
