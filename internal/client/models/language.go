package models

// LanguageFamily classifies a language.
type LanguageFamily string

const (
	FamilyNigerCongo LanguageFamily = "niger_congo"
	FamilyMande      LanguageFamily = "mande"
	FamilyKru        LanguageFamily = "kru"
	FamilyMel        LanguageFamily = "mel"
	FamilyCreole     LanguageFamily = "creole"
)

var LanguageFamilies = []LanguageFamily{FamilyNigerCongo, FamilyMande, FamilyKru, FamilyMel, FamilyCreole}

// EndangermentLevel follows the UNESCO scale.
type EndangermentLevel string

const (
	EndangermentSafe                 EndangermentLevel = "safe"
	EndangermentVulnerable           EndangermentLevel = "vulnerable"
	EndangermentDefinitelyEndangered EndangermentLevel = "definitely_endangered"
	EndangermentSeverelyEndangered   EndangermentLevel = "severely_endangered"
	EndangermentCriticallyEndangered EndangermentLevel = "critically_endangered"
)

var EndangermentLevels = []EndangermentLevel{
	EndangermentSafe,
	EndangermentVulnerable,
	EndangermentDefinitelyEndangered,
	EndangermentSeverelyEndangered,
	EndangermentCriticallyEndangered,
}

// Language is a language tracked by the platform.
type Language struct {
	ID                ID                `json:"id,omitempty"`
	Name              string            `json:"name"`
	ISOCode           string            `json:"iso_code,omitempty"`
	Family            LanguageFamily    `json:"family"`
	Regions           string            `json:"regions"`
	EndangermentLevel EndangermentLevel `json:"endangerment_level"`
	EstimatedSpeakers *int              `json:"estimated_speakers,omitempty"`
	Description       string            `json:"description,omitempty"`
}

func (l Language) RecordID() ID { return l.ID }

func (l Language) WithID(id ID) Language {
	l.ID = id
	return l
}
