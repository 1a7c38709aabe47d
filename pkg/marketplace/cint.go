package marketplace

import (
	"context"
	"net/http"
	"net/url"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
)

const DEFAULT_SCREENING_LANGUAGE = "en"

// CintProvider talks to the Cint exchange. Initiate is language scoped.
type CintProvider struct {
	client httpclient.ClientConfig
}

func NewCintProvider(client httpclient.ClientConfig) *CintProvider {
	return &CintProvider{client: client}
}

func (p *CintProvider) InitiateScreening(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor) (InitiateResult, error) {
	language := descriptor.Language
	if language == "" {
		language = DEFAULT_SCREENING_LANGUAGE
	}
	body, err := p.client.RunHTTPcall(ctx, http.MethodGet, "/cint/screening/initiate/"+url.PathEscape(descriptor.ProjectCode)+"/"+url.PathEscape(language), nil)
	if err != nil {
		return InitiateResult{}, err
	}
	return DecodeInitiateResponse(body)
}

func (p *CintProvider) SubmitAnswers(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor, answers []enrollmentTypes.RespondentAnswer) (SubmitResult, error) {
	body, err := p.client.RunHTTPcall(ctx, http.MethodPost, "/cint/handle-screening-responses", map[string]interface{}{
		"surveyId":  descriptor.ProjectID,
		"responses": answers,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return DecodeSubmitResponse(body)
}

func (p *CintProvider) UpdateRespondentStatus(ctx context.Context, encryptedPayload string) error {
	_, err := p.client.RunHTTPcall(ctx, http.MethodPatch, "/cint/update/respondent/status", map[string]interface{}{
		"data": encryptedPayload,
	})
	return err
}
