package types

import "strings"

// Where the survey question flow executes after screening.
const (
	SURVEY_HOSTING_TYPE_INTERNAL = "INTERNAL"
	SURVEY_HOSTING_TYPE_EXTERNAL = "EXTERNAL"
)

// Marketplace identifiers for the supported survey sources.
const (
	MARKETPLACE_PROJECTS = "projects"
	MARKETPLACE_DIY      = "diy"
	MARKETPLACE_CINT     = "cint"
	MARKETPLACE_TOLUNA   = "toluna"
)

// EnrollmentDescriptor identifies a survey opportunity and its eligibility
// constraints. It is carried encrypted in the enrollment link and only ever
// read to derive a screening session, never mutated.
type EnrollmentDescriptor struct {
	ProjectCode        string   `json:"projectCode"`
	ProjectID          int      `json:"projectId,omitempty"`
	Marketplace        string   `json:"marketplace,omitempty"`
	Language           string   `json:"language,omitempty"`
	CountryCode        string   `json:"countryCode,omitempty"`
	DeviceRestrictions []string `json:"deviceRestrictions,omitempty"`
	SurveyHostingType  string   `json:"surveyHostingType,omitempty"`
	IsTest             bool     `json:"isTest,omitempty"`
}

const (
	QUESTION_TYPE_SINGLE_CHOICE   = "single_choice"
	QUESTION_TYPE_MULTIPLE_CHOICE = "multiple_choice"
	QUESTION_TYPE_OPEN_TEXT       = "open_text"
)

type Translation struct {
	Language       string `json:"language"`
	TranslatedText string `json:"translatedText,omitempty"`
	Label          string `json:"label,omitempty"`
}

type AnswerOption struct {
	Label        string        `json:"label"`
	Option       string        `json:"option"`
	Translations []Translation `json:"translations,omitempty"`
}

type ScreeningQuestion struct {
	QuestionID    int            `json:"questionId"`
	Question      string         `json:"question"`
	QuestionType  string         `json:"questionType"`
	AnswerOptions []AnswerOption `json:"answerOptions,omitempty"`
	Translations  []Translation  `json:"translations,omitempty"`
}

// RespondentAnswer is one submitted answer as the marketplaces expect it.
// Multiple choice selections are flattened into a comma joined string for
// backend compatibility.
type RespondentAnswer struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

// Terminal statuses every marketplace variant is normalized to.
const (
	STATUS_TARGET_SUITABLE      = "TARGET_SUITABLE"
	STATUS_TARGET_UNSUITABLE    = "TARGET_UNSUITABLE"
	STATUS_QUOTA_FULL           = "QUOTA_FULL"
	STATUS_GEO_LOCKED           = "GEO_LOCKED"
	STATUS_CLOSED               = "CLOSED"
	STATUS_BOT_DETECTED         = "BOT_DETECTED"
	STATUS_MAX_SURVEY_REACHED   = "MAX_SURVEY_REACHED"
	STATUS_SURVEY_TAKEN         = "SURVEY_TAKEN"
	STATUS_NO_SURVEYS           = "NO_SURVEYS"
	STATUS_NO_COOKIES           = "NO_COOKIES"
	STATUS_SURVEY_NOT_AVAILABLE = "SURVEY_NOT_AVAILABLE"
	STATUS_COMPLETED            = "COMPLETED"
	STATUS_SCREEN_OUT           = "SCREEN_OUT"
	STATUS_DISQUALIFIED         = "DISQUALIFIED"
)

var knownTerminalStatuses = map[string]struct{}{
	STATUS_TARGET_SUITABLE:      {},
	STATUS_TARGET_UNSUITABLE:    {},
	STATUS_QUOTA_FULL:           {},
	STATUS_GEO_LOCKED:           {},
	STATUS_CLOSED:               {},
	STATUS_BOT_DETECTED:         {},
	STATUS_MAX_SURVEY_REACHED:   {},
	STATUS_SURVEY_TAKEN:         {},
	STATUS_NO_SURVEYS:           {},
	STATUS_NO_COOKIES:           {},
	STATUS_SURVEY_NOT_AVAILABLE: {},
	STATUS_COMPLETED:            {},
	STATUS_SCREEN_OUT:           {},
	STATUS_DISQUALIFIED:         {},
}

// NormalizeStatus upper-cases a marketplace provided status and collapses
// known synonyms (DISQUALIFIED is reported by some marketplaces instead of
// SCREEN_OUT).
func NormalizeStatus(status string) string {
	normalized := strings.ToUpper(status)
	if normalized == STATUS_DISQUALIFIED {
		return STATUS_SCREEN_OUT
	}
	return normalized
}

// IsKnownTerminalStatus reports whether the status is part of the outcome
// taxonomy shared by all marketplaces.
func IsKnownTerminalStatus(status string) bool {
	_, ok := knownTerminalStatuses[strings.ToUpper(status)]
	return ok
}
