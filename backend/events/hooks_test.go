package events

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"neetprep/backend/models"
	"neetprep/backend/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledPublisherDropsEvents(t *testing.T) {
	p, err := NewAMQPPublisher("", "", log.New(io.Discard, "", 0))
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish(context.Background(), NewEvent(EventSessionStarted, "u", nil)))
	assert.NoError(t, p.Close())
}

func TestSessionHooksPublishEachTransition(t *testing.T) {
	mock := NewMockPublisher()
	hooks := SessionHooks(mock, log.New(io.Discard, "", 0))
	ctx := context.Background()

	view := session.View{
		ID:         "sess-1",
		UserID:     "user-1",
		Subject:    models.SubjectPhysics,
		Difficulty: models.DifficultyMixed,
		Total:      5,
		StartTime:  time.Now(),
	}
	hooks.Started(ctx, view)
	hooks.Completed(ctx, models.TestAttempt{ID: 7, UserID: "user-1", Subject: models.SubjectPhysics, Score: 2.75})
	hooks.Failed(ctx, view, &session.Error{Kind: session.KindStore, Message: session.MsgSubmissionFailed})

	events := mock.Events()
	require.Len(t, events, 3)

	assert.Equal(t, EventSessionStarted, events[0].EventType)
	assert.Equal(t, "sess-1", events[0].SessionID)
	assert.Equal(t, 5, events[0].Payload.(startedPayload).TotalQuestions)

	assert.Equal(t, EventAttemptCompleted, events[1].EventType)
	assert.Equal(t, uint(7), events[1].Payload.(models.TestAttempt).ID)

	assert.Equal(t, EventSessionFailed, events[2].EventType)
	assert.Equal(t, session.KindStore, events[2].Payload.(failedPayload).Kind)
	for _, e := range events {
		assert.Equal(t, "user-1", e.UserID)
		assert.NotEmpty(t, e.ID)
	}
}
