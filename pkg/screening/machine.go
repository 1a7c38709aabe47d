package screening

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
	"github.com/panel-framework/panel-backend/pkg/marketplace"
	"github.com/panel-framework/panel-backend/pkg/outcome"
)

// Backend error code some marketplaces use when a project's quota filled up
// between listing and submission.
const BACKEND_ERROR_CODE_QUOTA_FULL = "QUOTA_FULL"

// Machine drives screening sessions through their states: initiate against
// the marketplace, collect answers, submit, interpret the terminal status.
type Machine struct {
	providers *marketplace.Registry
}

func NewMachine(providers *marketplace.Registry) *Machine {
	return &Machine{providers: providers}
}

// Initiate asks the marketplace to start screening for a gate-passed
// session and transitions it to AWAITING_ANSWERS or TERMINAL.
func (m *Machine) Initiate(ctx context.Context, session *Session) error {
	provider, err := m.providers.ProviderFor(session.Descriptor.Marketplace)
	if err != nil {
		return err
	}

	result, err := provider.InitiateScreening(ctx, session.Descriptor)
	if err != nil {
		if status, ok := terminalStatusForError(err); ok {
			m.resolveTerminal(session, status, "")
			return nil
		}
		session.mu.Lock()
		session.status = SESSION_STATUS_ERROR
		session.touch()
		session.mu.Unlock()
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	switch result.Kind {
	case marketplace.INITIATE_RESULT_QUESTIONS:
		session.questions = result.Questions
		session.status = SESSION_STATUS_AWAITING_ANSWERS
	case marketplace.INITIATE_RESULT_TERMINAL:
		session.terminalStatus = result.Status
		session.status = SESSION_STATUS_TERMINAL
		action := outcome.Route(result.Status, session.Descriptor.SurveyHostingType, result.SurveyLink)
		session.action = &action
	case marketplace.INITIATE_RESULT_EMPTY:
		// No questions to ask means the respondent is immediately suitable;
		// the hosting type decides where the survey itself runs.
		session.terminalStatus = enrollmentTypes.STATUS_TARGET_SUITABLE
		session.status = SESSION_STATUS_TERMINAL
		action := outcome.Route(enrollmentTypes.STATUS_TARGET_SUITABLE, session.Descriptor.SurveyHostingType, result.SurveyLink)
		session.action = &action
	}
	session.touch()
	return nil
}

// Submit validates completeness, sends the collected answers and interprets
// the terminal status. At most one submission may be in flight; a second
// trigger returns ErrSubmitInFlight and leaves the running one alone. On a
// retryable failure the session stays in AWAITING_ANSWERS with the collected
// answers intact.
func (m *Machine) Submit(ctx context.Context, session *Session) (outcome.Action, error) {
	provider, err := m.providers.ProviderFor(session.Descriptor.Marketplace)
	if err != nil {
		return outcome.Action{}, err
	}

	session.mu.Lock()
	switch session.status {
	case SESSION_STATUS_SUBMITTING:
		session.mu.Unlock()
		return outcome.Action{}, ErrSubmitInFlight
	case SESSION_STATUS_AWAITING_ANSWERS:
		// continue
	default:
		session.mu.Unlock()
		return outcome.Action{}, ErrNotAwaitingAnswer
	}
	if question, incomplete := session.incompleteQuestion(); incomplete {
		session.mu.Unlock()
		slog.Debug("submission blocked, incomplete answer", slog.Int("questionId", question.QuestionID))
		return outcome.Action{}, ErrIncompleteAnswers
	}
	answers := session.formatAnswers()
	session.status = SESSION_STATUS_SUBMITTING
	session.touch()
	session.mu.Unlock()

	result, err := provider.SubmitAnswers(ctx, session.Descriptor, answers)
	if err != nil {
		if status, ok := terminalStatusForError(err); ok {
			m.resolveTerminal(session, status, "")
			return *session.Action(), nil
		}
		session.mu.Lock()
		session.status = SESSION_STATUS_AWAITING_ANSWERS
		session.touch()
		session.mu.Unlock()
		return outcome.Action{}, err
	}

	status := result.Status
	if status == "" {
		// Some marketplaces answer an external submission with just a link.
		status = enrollmentTypes.STATUS_TARGET_SUITABLE
	}
	m.resolveTerminal(session, status, result.SurveyLink)
	return *session.Action(), nil
}

func (m *Machine) resolveTerminal(session *Session, status string, link string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.terminalStatus = enrollmentTypes.NormalizeStatus(status)
	session.status = SESSION_STATUS_TERMINAL
	action := outcome.Route(session.terminalStatus, session.Descriptor.SurveyHostingType, link)
	session.action = &action
	session.touch()
}

// terminalStatusForError maps backend rejections to terminal business
// outcomes: 403 means the respondent is unsuitable, 400 with the quota code
// means the project filled up. Everything else stays a transport error.
func terminalStatusForError(err error) (string, bool) {
	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}
	switch {
	case apiErr.StatusCode == http.StatusForbidden:
		return enrollmentTypes.STATUS_TARGET_UNSUITABLE, true
	case apiErr.StatusCode == http.StatusBadRequest && isQuotaFull(apiErr):
		return enrollmentTypes.STATUS_QUOTA_FULL, true
	}
	return "", false
}

func isQuotaFull(apiErr *httpclient.APIError) bool {
	return apiErr.Code == BACKEND_ERROR_CODE_QUOTA_FULL ||
		apiErr.Message == BACKEND_ERROR_CODE_QUOTA_FULL
}
