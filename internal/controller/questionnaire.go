package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/core/session"
	"github.com/persome/account-system/internal/core/state"
)

// QuestionnaireState is the assessment screen's immutable state. Answers map
// question ids to the chosen option; the MBTI type itself is computed on the
// client and arrives with CompleteAssessment.
type QuestionnaireState struct {
	CurrentIndex int
	Answers      map[int]string
	Saving       bool
	Result       *domain.PersonalityResult
}

// QuestionnaireAction is the closed action set for the assessment screen.
type QuestionnaireAction interface{ questionnaireAction() }

type (
	// AnswerQuestion records the choice for one question and advances.
	AnswerQuestion struct {
		QuestionID int
		Choice     string
	}
	// GoBack steps to the previous question.
	GoBack struct{}
	// CompleteAssessment persists the computed result.
	CompleteAssessment struct {
		MbtiType          string
		StaticDescription string
		AIDescription     string
	}
	// RestartAssessment clears all answers.
	RestartAssessment struct{}
)

func (AnswerQuestion) questionnaireAction()     {}
func (GoBack) questionnaireAction()             {}
func (CompleteAssessment) questionnaireAction() {}
func (RestartAssessment) questionnaireAction()  {}

// ResultSaved is the one-shot navigation event emitted once the result is
// persisted.
type ResultSaved struct {
	ResultID string
}

// QuestionnaireController drives the MBTI assessment screen.
type QuestionnaireController struct {
	*state.Container[QuestionnaireState]
	personality ports.PersonalityService
	coord       *session.Coordinator
}

func NewQuestionnaireController(personality ports.PersonalityService, coord *session.Coordinator, log zerolog.Logger) *QuestionnaireController {
	return &QuestionnaireController{
		Container:   state.NewContainer("questionnaire", QuestionnaireState{}, log),
		personality: personality,
		coord:       coord,
	}
}

func (c *QuestionnaireController) Dispatch(action QuestionnaireAction) {
	switch a := action.(type) {
	case AnswerQuestion:
		c.SetState(func(s QuestionnaireState) QuestionnaireState {
			answers := make(map[int]string, len(s.Answers)+1)
			for k, v := range s.Answers {
				answers[k] = v
			}
			answers[a.QuestionID] = a.Choice
			s.Answers = answers
			s.CurrentIndex++
			return s
		})
	case GoBack:
		c.SetState(func(s QuestionnaireState) QuestionnaireState {
			if s.CurrentIndex > 0 {
				s.CurrentIndex--
			}
			return s
		})
	case CompleteAssessment:
		c.handleComplete(a)
	case RestartAssessment:
		c.SetState(func(QuestionnaireState) QuestionnaireState {
			return QuestionnaireState{}
		})
	default:
		panic(fmt.Sprintf("questionnaire: unhandled action %T", action))
	}
}

func (c *QuestionnaireController) handleComplete(a CompleteAssessment) {
	userID := c.coord.CurrentUserID()
	if userID == "" {
		state.HandleResult[QuestionnaireState, *domain.PersonalityResult](c.Container, nil, domain.ErrNotAuthenticated, func(*domain.PersonalityResult) {})
		return
	}

	c.SetState(func(s QuestionnaireState) QuestionnaireState {
		s.Saving = true
		return s
	})

	c.LaunchReplacing("save_result", func(ctx context.Context) error {
		result, err := c.personality.SaveResult(ctx, ports.SaveResultInput{
			UserID:            userID,
			MbtiType:          a.MbtiType,
			AIDescription:     a.AIDescription,
			StaticDescription: a.StaticDescription,
		})
		if ctx.Err() != nil {
			return nil
		}
		state.HandleResult(c.Container, result, err, func(r *domain.PersonalityResult) {
			c.SetState(func(s QuestionnaireState) QuestionnaireState {
				s.Saving = false
				s.Result = r
				return s
			})
			c.EmitEvent(ResultSaved{ResultID: r.ID})
		})
		if err != nil {
			c.SetState(func(s QuestionnaireState) QuestionnaireState {
				s.Saving = false
				return s
			})
		}
		return nil
	})
}
