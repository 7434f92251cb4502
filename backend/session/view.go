package session

import (
	"maps"
	"time"

	"neetprep/backend/models"
)

// QuestionView is a question as shown to the test taker. The correct answer
// is only filled in once the session is completed.
type QuestionView struct {
	ID            uint               `json:"id"`
	Text          string             `json:"question"`
	Options       models.Options     `json:"options"`
	Subject       models.Subject     `json:"subject"`
	Chapter       string             `json:"chapter"`
	Difficulty    models.Difficulty  `json:"difficulty"`
	CorrectAnswer models.OptionLabel `json:"correctAnswer,omitempty"`
}

// View is a point-in-time snapshot of a session.
type View struct {
	ID               string                      `json:"id"`
	UserID           string                      `json:"userId"`
	State            State                       `json:"state"`
	Subject          models.Subject              `json:"subject"`
	Difficulty       models.Difficulty           `json:"difficulty"`
	StartTime        time.Time                   `json:"startTime"`
	Questions        []QuestionView              `json:"questions"`
	Answers          map[uint]models.OptionLabel `json:"answers"`
	Cursor           int                         `json:"cursor"`
	Total            int                         `json:"totalQuestions"`
	Answered         int                         `json:"answered"`
	RemainingSeconds int                         `json:"remainingSeconds"`
	TimerRunning     bool                        `json:"timerRunning"`
	Completion       models.CompletionType       `json:"completionType,omitempty"`
	Attempt          *models.TestAttempt         `json:"attempt,omitempty"`
	Failure          *Error                      `json:"failure,omitempty"`
	Message          string                      `json:"message,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	reveal := s.state == StateCompleted
	questions := make([]QuestionView, len(s.questions))
	for i, q := range s.questions {
		questions[i] = QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Options:    q.Options,
			Subject:    q.Subject,
			Chapter:    q.Chapter,
			Difficulty: q.Difficulty,
		}
		if reveal {
			questions[i].CorrectAnswer = q.CorrectAnswer
		}
	}

	answered := 0
	for _, a := range s.answers {
		if a != "" {
			answered++
		}
	}

	v := View{
		ID:               s.ID,
		UserID:           s.UserID,
		State:            s.state,
		Subject:          s.subject,
		Difficulty:       s.difficulty,
		StartTime:        s.startTime,
		Questions:        questions,
		Answers:          maps.Clone(s.answers),
		Cursor:           s.cursor,
		Total:            len(s.questions),
		Answered:         answered,
		RemainingSeconds: s.remainingLocked(),
		TimerRunning:     s.running,
		Completion:       s.completion,
		Failure:          s.failure,
	}
	if s.attempt != nil {
		a := *s.attempt
		v.Attempt = &a
	}
	switch {
	case s.state == StateCompleted && s.completion == models.CompletionTimeout:
		v.Message = MsgTimeUp
	case s.state == StateCompleted:
		v.Message = MsgSubmitted
	case s.failure != nil:
		v.Message = s.failure.Message
	}
	return v
}

// CurrentQuestion is the question under the cursor.
func (s *Session) CurrentQuestion() (QuestionView, bool) {
	v := s.View()
	if len(v.Questions) == 0 {
		return QuestionView{}, false
	}
	return v.Questions[v.Cursor], true
}
