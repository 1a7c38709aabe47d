package marketplace

import (
	"encoding/json"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

// screeningResponseBody is the shape shared by the marketplace screening
// endpoints, once the API envelope is peeled off.
type screeningResponseBody struct {
	Status             string                              `json:"status,omitempty"`
	Questions          []enrollmentTypes.ScreeningQuestion `json:"questions,omitempty"`
	SurveyLinkTemplate string                              `json:"surveyLinkTemplate,omitempty"`
}

// unwrapEnvelope strips the {data: {...}} wrappers the backends nest their
// payloads in. Some wrap once, some twice.
func unwrapEnvelope(body map[string]interface{}) map[string]interface{} {
	for i := 0; i < 2; i++ {
		inner, ok := body["data"].(map[string]interface{})
		if !ok {
			return body
		}
		body = inner
	}
	return body
}

func parseScreeningBody(body map[string]interface{}) (parsed screeningResponseBody, err error) {
	raw, err := json.Marshal(unwrapEnvelope(body))
	if err != nil {
		return parsed, err
	}
	err = json.Unmarshal(raw, &parsed)
	return parsed, err
}

// DecodeInitiateResponse converts a raw initiate response into the tagged
// result the screening flow matches on.
func DecodeInitiateResponse(body map[string]interface{}) (InitiateResult, error) {
	parsed, err := parseScreeningBody(body)
	if err != nil {
		return InitiateResult{}, err
	}

	if len(parsed.Questions) > 0 {
		return InitiateResult{
			Kind:      INITIATE_RESULT_QUESTIONS,
			Questions: parsed.Questions,
		}, nil
	}

	if parsed.Status != "" {
		return InitiateResult{
			Kind:       INITIATE_RESULT_TERMINAL,
			Status:     enrollmentTypes.NormalizeStatus(parsed.Status),
			SurveyLink: parsed.SurveyLinkTemplate,
		}, nil
	}

	return InitiateResult{
		Kind:       INITIATE_RESULT_EMPTY,
		SurveyLink: parsed.SurveyLinkTemplate,
	}, nil
}

// DecodeSubmitResponse converts a raw answer submission response.
func DecodeSubmitResponse(body map[string]interface{}) (SubmitResult, error) {
	parsed, err := parseScreeningBody(body)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		Status:     enrollmentTypes.NormalizeStatus(parsed.Status),
		SurveyLink: parsed.SurveyLinkTemplate,
	}, nil
}
