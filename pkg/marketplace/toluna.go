package marketplace

import (
	"context"
	"errors"
	"net/http"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
)

// ErrScreeningNotSupported is returned by marketplaces whose screening runs
// entirely on the marketplace's own pages.
var ErrScreeningNotSupported = errors.New("screening is handled on the marketplace side")

// TolunaProvider covers the Toluna integration. Toluna hosts screening and
// surveys on its own pages, so only status reporting goes through here.
type TolunaProvider struct {
	client httpclient.ClientConfig
}

func NewTolunaProvider(client httpclient.ClientConfig) *TolunaProvider {
	return &TolunaProvider{client: client}
}

func (p *TolunaProvider) InitiateScreening(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor) (InitiateResult, error) {
	return InitiateResult{}, ErrScreeningNotSupported
}

func (p *TolunaProvider) SubmitAnswers(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor, answers []enrollmentTypes.RespondentAnswer) (SubmitResult, error) {
	return SubmitResult{}, ErrScreeningNotSupported
}

func (p *TolunaProvider) UpdateRespondentStatus(ctx context.Context, encryptedPayload string) error {
	_, err := p.client.RunHTTPcall(ctx, http.MethodPost, "/toluna/handle-client-response", map[string]interface{}{
		"data": encryptedPayload,
	})
	return err
}
