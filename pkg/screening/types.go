package screening

import (
	"errors"
	"strings"
	"sync"
	"time"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	"github.com/panel-framework/panel-backend/pkg/outcome"
)

// Session lifecycle states.
const (
	SESSION_STATUS_LOADING          = "LOADING"
	SESSION_STATUS_AWAITING_ANSWERS = "AWAITING_ANSWERS"
	SESSION_STATUS_SUBMITTING       = "SUBMITTING"
	SESSION_STATUS_TERMINAL         = "TERMINAL"
	SESSION_STATUS_GATE_FAILED      = "GATE_FAILED"
	SESSION_STATUS_ERROR            = "ERROR"
)

var (
	ErrSessionNotFound    = errors.New("screening session not found or expired")
	ErrIncompleteAnswers  = errors.New("all screening questions must be answered before submission")
	ErrSubmitInFlight     = errors.New("a submission is already in flight for this session")
	ErrNotAwaitingAnswer  = errors.New("session is not collecting answers")
	ErrUnknownQuestion    = errors.New("question is not part of this session")
	ErrAnswerTypeMismatch = errors.New("answer value does not match the question type")
)

// Answer holds the collected value for one question. Text for single choice
// and open text questions, Selections for multiple choice.
type Answer struct {
	Text       string
	Selections []string
}

// Session is the in-memory state of one enrollment visit. It is created when
// the enrollment screen mounts and dropped when the visitor navigates away
// or the idle TTL passes; nothing survives a restart.
type Session struct {
	mu sync.Mutex

	ID          string
	Descriptor  enrollmentTypes.EnrollmentDescriptor
	OriginalURL string

	status         string
	questions      []enrollmentTypes.ScreeningQuestion
	responses      map[int]Answer
	terminalStatus string
	action         *outcome.Action

	createdAt  time.Time
	lastActive time.Time
}

func NewSession(id string, descriptor enrollmentTypes.EnrollmentDescriptor, originalURL string) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		Descriptor:  descriptor,
		OriginalURL: originalURL,
		status:      SESSION_STATUS_LOADING,
		responses:   map[int]Answer{},
		createdAt:   now,
		lastActive:  now,
	}
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Questions() []enrollmentTypes.ScreeningQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	questions := make([]enrollmentTypes.ScreeningQuestion, len(s.questions))
	copy(questions, s.questions)
	return questions
}

func (s *Session) TerminalStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminalStatus
}

func (s *Session) Action() *outcome.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.action == nil {
		return nil
	}
	action := *s.action
	return &action
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

// MarkGateFailed resolves the session locally after a failed eligibility
// gate, before any backend contact.
func (s *Session) MarkGateFailed(action outcome.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = SESSION_STATUS_GATE_FAILED
	if action.Status != "" {
		s.terminalStatus = action.Status
	}
	s.action = &action
	s.touch()
}

// SetAnswer records the value for a single choice or open text question.
func (s *Session) SetAnswer(questionID int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SESSION_STATUS_AWAITING_ANSWERS {
		return ErrNotAwaitingAnswer
	}
	question, ok := s.findQuestion(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if question.QuestionType == enrollmentTypes.QUESTION_TYPE_MULTIPLE_CHOICE {
		return ErrAnswerTypeMismatch
	}
	s.responses[questionID] = Answer{Text: value}
	s.touch()
	return nil
}

// ToggleOption flips one option of a multiple choice question: selecting an
// already selected option removes it.
func (s *Session) ToggleOption(questionID int, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SESSION_STATUS_AWAITING_ANSWERS {
		return ErrNotAwaitingAnswer
	}
	question, ok := s.findQuestion(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if question.QuestionType != enrollmentTypes.QUESTION_TYPE_MULTIPLE_CHOICE {
		return ErrAnswerTypeMismatch
	}

	current := s.responses[questionID].Selections
	updated := make([]string, 0, len(current)+1)
	removed := false
	for _, selected := range current {
		if selected == option {
			removed = true
			continue
		}
		updated = append(updated, selected)
	}
	if !removed {
		updated = append(updated, option)
	}
	s.responses[questionID] = Answer{Selections: updated}
	s.touch()
	return nil
}

func (s *Session) findQuestion(questionID int) (enrollmentTypes.ScreeningQuestion, bool) {
	for _, question := range s.questions {
		if question.QuestionID == questionID {
			return question, true
		}
	}
	return enrollmentTypes.ScreeningQuestion{}, false
}

// incompleteQuestion returns the first question without a qualifying answer.
func (s *Session) incompleteQuestion() (enrollmentTypes.ScreeningQuestion, bool) {
	for _, question := range s.questions {
		answer, ok := s.responses[question.QuestionID]
		switch question.QuestionType {
		case enrollmentTypes.QUESTION_TYPE_MULTIPLE_CHOICE:
			if !ok || len(answer.Selections) == 0 {
				return question, true
			}
		default:
			if !ok || answer.Text == "" {
				return question, true
			}
		}
	}
	return enrollmentTypes.ScreeningQuestion{}, false
}

// formatAnswers serializes collected answers in question order. Multiple
// choice selections are comma joined, the format the marketplaces expect.
func (s *Session) formatAnswers() []enrollmentTypes.RespondentAnswer {
	answers := make([]enrollmentTypes.RespondentAnswer, 0, len(s.questions))
	for _, question := range s.questions {
		answer := s.responses[question.QuestionID]
		value := answer.Text
		if question.QuestionType == enrollmentTypes.QUESTION_TYPE_MULTIPLE_CHOICE {
			value = strings.Join(answer.Selections, ",")
		}
		answers = append(answers, enrollmentTypes.RespondentAnswer{
			QuestionID: question.QuestionID,
			Answer:     value,
		})
	}
	return answers
}
