package marketplace

import (
	"context"
	"net/http"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
)

// DIYProvider talks to the self-serve ("DIY") marketplace. DIY projects
// carry a numeric project id next to the project code.
type DIYProvider struct {
	client httpclient.ClientConfig
}

func NewDIYProvider(client httpclient.ClientConfig) *DIYProvider {
	return &DIYProvider{client: client}
}

func (p *DIYProvider) InitiateScreening(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor) (InitiateResult, error) {
	body, err := p.client.RunHTTPcall(ctx, http.MethodPost, "/diy/projects/initiate-screening", map[string]interface{}{
		"projectCode": descriptor.ProjectCode,
		"projectId":   descriptor.ProjectID,
	})
	if err != nil {
		return InitiateResult{}, err
	}
	return DecodeInitiateResponse(body)
}

func (p *DIYProvider) SubmitAnswers(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor, answers []enrollmentTypes.RespondentAnswer) (SubmitResult, error) {
	body, err := p.client.RunHTTPcall(ctx, http.MethodPost, "/diy/projects/handle-respondent-answers", map[string]interface{}{
		"projectCode": descriptor.ProjectCode,
		"projectId":   descriptor.ProjectID,
		"responses":   answers,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return DecodeSubmitResponse(body)
}

func (p *DIYProvider) UpdateRespondentStatus(ctx context.Context, encryptedPayload string) error {
	_, err := p.client.RunHTTPcall(ctx, http.MethodPost, "/diy/projects/update-diy-respondent-status", map[string]interface{}{
		"data": encryptedPayload,
	})
	return err
}
