package events

import (
	"context"
	"log"
	"time"

	"neetprep/backend/models"
	"neetprep/backend/session"
)

const publishTimeout = 5 * time.Second

type startedPayload struct {
	Subject        models.Subject    `json:"subject"`
	Difficulty     models.Difficulty `json:"difficulty"`
	TotalQuestions int               `json:"totalQuestions"`
	StartTime      time.Time         `json:"startTime"`
}

type failedPayload struct {
	Subject models.Subject `json:"subject"`
	Kind    session.Kind   `json:"kind"`
	Message string         `json:"message"`
}

// SessionHooks publishes one event per session transition. Publish errors
// are logged and never reach the session.
func SessionHooks(p Publisher, logger *log.Logger) session.Hooks {
	if logger == nil {
		logger = log.Default()
	}
	publish := func(ctx context.Context, e *Event) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, e); err != nil {
			logger.Printf("publish %s for user %s: %v", e.EventType, e.UserID, err)
		}
	}

	return session.Hooks{
		Started: func(ctx context.Context, view session.View) {
			e := NewEvent(EventSessionStarted, view.UserID, startedPayload{
				Subject:        view.Subject,
				Difficulty:     view.Difficulty,
				TotalQuestions: view.Total,
				StartTime:      view.StartTime,
			})
			e.SessionID = view.ID
			publish(ctx, e)
		},
		Completed: func(ctx context.Context, attempt models.TestAttempt) {
			publish(ctx, NewEvent(EventAttemptCompleted, attempt.UserID, attempt))
		},
		Failed: func(ctx context.Context, view session.View, err *session.Error) {
			e := NewEvent(EventSessionFailed, view.UserID, failedPayload{
				Subject: view.Subject,
				Kind:    err.Kind,
				Message: err.Message,
			})
			e.SessionID = view.ID
			publish(ctx, e)
		},
	}
}
