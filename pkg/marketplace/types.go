package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

var ErrUnknownMarketplace = errors.New("unknown marketplace")

// InitiateResultKind tags the known response shapes of the screening
// initiate operation. The shapes differ per marketplace, they are decoded
// once at this boundary so the screening flow can match exhaustively
// instead of null-checking.
type InitiateResultKind int

const (
	// Outstanding screening questions to collect answers for.
	INITIATE_RESULT_QUESTIONS InitiateResultKind = iota
	// Backend already produced a terminal status, nothing to render.
	INITIATE_RESULT_TERMINAL
	// No questions and no terminal status; the hosting type decides whether
	// this means an external redirect or the internal survey flow.
	INITIATE_RESULT_EMPTY
)

type InitiateResult struct {
	Kind       InitiateResultKind
	Status     string
	Questions  []enrollmentTypes.ScreeningQuestion
	SurveyLink string
}

type SubmitResult struct {
	Status     string
	SurveyLink string
}

// ScreeningProvider is one marketplace's screening operations.
type ScreeningProvider interface {
	InitiateScreening(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor) (InitiateResult, error)
	SubmitAnswers(ctx context.Context, descriptor enrollmentTypes.EnrollmentDescriptor, answers []enrollmentTypes.RespondentAnswer) (SubmitResult, error)
	UpdateRespondentStatus(ctx context.Context, encryptedPayload string) error
}

// Registry resolves a descriptor's marketplace to its provider. Descriptors
// without an explicit marketplace use the internal projects one.
type Registry struct {
	providers map[string]ScreeningProvider
}

func NewRegistry(providers map[string]ScreeningProvider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) ProviderFor(marketplaceName string) (ScreeningProvider, error) {
	name := strings.ToLower(marketplaceName)
	if name == "" {
		name = enrollmentTypes.MARKETPLACE_PROJECTS
	}
	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarketplace, marketplaceName)
	}
	return provider, nil
}
