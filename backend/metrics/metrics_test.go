package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"neetprep/backend/models"
	"neetprep/backend/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSessionHooksUpdateCollectors(t *testing.T) {
	m := New()
	hooks := m.SessionHooks()
	ctx := context.Background()

	hooks.Started(ctx, session.View{})
	hooks.Started(ctx, session.View{})
	hooks.Completed(ctx, models.TestAttempt{
		Subject:        models.SubjectPhysics,
		CompletionType: models.CompletionTimeout,
		Score:          2.75,
		TotalQuestions: 5,
	})
	hooks.Failed(ctx, session.View{}, &session.Error{Kind: session.KindRepository})
	m.TrackActiveSessions(func() int { return 3 })
	m.ObserveRequest("GET", "200", 0.01)

	out := scrape(t, m)
	assert.Contains(t, out, "practice_sessions_started_total 2")
	assert.Contains(t, out, `practice_attempts_submitted_total{completion="timeout",subject="Physics"} 1`)
	assert.Contains(t, out, `practice_session_failures_total{kind="RepositoryError"} 1`)
	assert.Contains(t, out, "practice_attempt_score_percentage_count 1")
	assert.Contains(t, out, "practice_sessions_active 3")
	assert.Contains(t, out, `practice_http_request_duration_seconds_count{method="GET",status="200"} 1`)
}
