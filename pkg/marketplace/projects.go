package marketplace

import (
	"context"
	"net/http"
	"net/url"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
)

// ProjectsProvider talks to the internal projects marketplace.
type ProjectsProvider struct {
	client httpclient.ClientConfig
}

func NewProjectsProvider(client httpclient.ClientConfig) *ProjectsProvider {
	return &ProjectsProvider{client: client}
}

func (p *ProjectsProvider) InitiateScreening(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor) (InitiateResult, error) {
	body, err := p.client.RunHTTPcall(ctx, http.MethodGet, "/projects/screening/initiate/"+url.PathEscape(descriptor.ProjectCode), nil)
	if err != nil {
		return InitiateResult{}, err
	}
	return DecodeInitiateResponse(body)
}

func (p *ProjectsProvider) SubmitAnswers(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor, answers []enrollmentTypes.RespondentAnswer) (SubmitResult, error) {
	body, err := p.client.RunHTTPcall(ctx, http.MethodPost, "/projects/screening/respond", map[string]interface{}{
		"projectCode": descriptor.ProjectCode,
		"responses":   answers,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return DecodeSubmitResponse(body)
}

func (p *ProjectsProvider) UpdateRespondentStatus(ctx context.Context, encryptedPayload string) error {
	_, err := p.client.RunHTTPcall(ctx, http.MethodPatch, "/projects/update/respondent/status", map[string]interface{}{
		"data": encryptedPayload,
	})
	return err
}
