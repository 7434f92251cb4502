package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"neetprep/backend/config"
	"neetprep/backend/metrics"
	"neetprep/backend/models"
	"neetprep/backend/repository"
	"neetprep/backend/services"
	"neetprep/backend/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app    *fiber.App
	stores *repository.Stores
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTTTL:        time.Hour,
		AdminUsername: "admin",
	}
	logger := log.New(io.Discard, "", 0)

	stores, err := repository.NewMemoryStores()
	require.NoError(t, err)

	m := metrics.New()
	progress := services.NewProgressService(stores.Attempts, stores.Progress, logger)
	engine := session.NewEngine(stores.Questions, stores.Attempts,
		session.WithLogger(logger),
		session.WithQuestionBounds(1, 50),
		session.WithHooks(progress.Hooks()),
		session.WithHooks(m.SessionHooks()),
	)
	registry := session.NewRegistry()
	m.TrackActiveSessions(registry.Active)

	app := fiber.New()
	SetupRoutes(app, Dependencies{
		Cfg:      cfg,
		Logger:   logger,
		Stores:   stores,
		Engine:   engine,
		Registry: registry,
		Progress: progress,
		Metrics:  m,
	})
	return &testServer{app: app, stores: stores}
}

// do sends a JSON request and decodes the JSON response, if any.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["data"].(map[string]interface{})["token"].(string)
}

func data(body map[string]interface{}) map[string]interface{} {
	d, _ := body["data"].(map[string]interface{})
	return d
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "asha")

	status, _ := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "asha", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "Asha", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status, body)

	status, body = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "", "email": "nope", "password": "123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, body["details"], 3)

	status, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "asha", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, data(body)["token"])

	status, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ASHA", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "asha", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/progress", "/api/sessions/current", "/api/attempts/stats", "/api/admin/analytics"} {
		status, _ := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
	status, _ := s.do(t, http.MethodGet, "/api/progress", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPracticeTestFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ravi")
	ctx := context.Background()

	status, body := s.do(t, http.MethodPost, "/api/sessions", token, map[string]interface{}{
		"subject":       "Physics",
		"questionCount": 5,
		"difficulty":    "Mixed",
	})
	require.Equal(t, http.StatusCreated, status, body)
	view := data(body)
	id := view["id"].(string)
	assert.Equal(t, string(session.StateInProgress), view["state"])
	assert.Equal(t, float64(5), view["totalQuestions"])
	assert.Equal(t, true, view["timerRunning"])

	questions := view["questions"].([]interface{})
	require.Len(t, questions, 5)
	first := questions[0].(map[string]interface{})
	assert.Nil(t, first["correctAnswer"])

	firstID := uint(first["id"].(float64))
	secondID := uint(questions[1].(map[string]interface{})["id"].(float64))
	q1, err := s.stores.Questions.Get(ctx, firstID)
	require.NoError(t, err)
	q2, err := s.stores.Questions.Get(ctx, secondID)
	require.NoError(t, err)
	wrong := models.OptionA
	if q2.CorrectAnswer == models.OptionA {
		wrong = models.OptionB
	}

	path := "/api/sessions/" + id
	status, _ = s.do(t, http.MethodPut, path+"/answers", token, map[string]interface{}{
		"questionId": firstID, "option": string(q1.CorrectAnswer),
	})
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPost, path+"/next", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(body)["cursor"])

	status, body = s.do(t, http.MethodPut, path+"/answers", token, map[string]interface{}{
		"questionId": secondID, "option": string(wrong),
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), data(body)["answered"])

	status, body = s.do(t, http.MethodPut, path+"/answers", token, map[string]interface{}{
		"questionId": 99999, "option": "A",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodPost, path+"/submit", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, session.MsgSubmitted, body["message"])
	done := data(body)
	assert.Equal(t, string(session.StateCompleted), done["state"])
	attempt := done["attempt"].(map[string]interface{})
	assert.Equal(t, float64(1), attempt["correctAnswers"])
	assert.Equal(t, float64(1), attempt["wrongAnswers"])
	assert.Equal(t, float64(3), attempt["unattempted"])
	assert.Equal(t, 0.75, attempt["score"])
	assert.Equal(t, string(models.CompletionManual), attempt["completionType"])

	status, body = s.do(t, http.MethodPost, path+"/submit", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SessionClosed", body["details"].(map[string]interface{})["kind"])

	status, body = s.do(t, http.MethodGet, "/api/attempts/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	stats := data(body)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalTests"])
	assert.Equal(t, 15.0, stats["avgScore"])
	assert.Len(t, data(body)["recent"], 1)

	status, body = s.do(t, http.MethodGet, "/api/attempts", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	attemptID := uint(attempt["id"].(float64))
	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/attempts/%d", attemptID), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/api/progress/overview", token, nil)
	require.Equal(t, http.StatusOK, status)
	overview := data(body)
	assert.Equal(t, float64(1), overview["totalTests"])
	assert.Equal(t, float64(1), overview["streak"])
	assert.Equal(t, string(models.SubjectPhysics), overview["bestSubject"])

	status, body = s.do(t, http.MethodGet, "/api/attempts/performance", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(body)[string(models.SubjectPhysics)], 1)
}

func TestSessionNotVisibleToOtherUsers(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "meera")
	other := s.register(t, "kiran")

	status, body := s.do(t, http.MethodPost, "/api/sessions", owner, map[string]interface{}{
		"subject": "Biology", "questionCount": 3,
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := data(body)["id"].(string)

	status, _ = s.do(t, http.MethodGet, "/api/sessions/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/api/sessions/current", owner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, data(body)["id"])

	status, _ = s.do(t, http.MethodDelete, "/api/sessions/"+id, owner, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, "/api/sessions/"+id, owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodGet, "/api/sessions/current", owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStartSessionErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "dev")

	status, body := s.do(t, http.MethodPost, "/api/sessions", token, map[string]interface{}{
		"subject": "Astronomy", "questionCount": 5,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ConfigurationError", body["details"].(map[string]interface{})["kind"])

	status, body = s.do(t, http.MethodPost, "/api/sessions", token, map[string]interface{}{
		"subject": "Physics", "questionCount": 5, "chapter": "Fluid Dynamics",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, session.MsgNoQuestions, body["message"])
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin")
	user := s.register(t, "student")

	status, _ := s.do(t, http.MethodGet, "/api/admin/analytics", user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodPost, "/api/admin/questions", admin, map[string]interface{}{
		"question":      "Which gas is evolved when zinc reacts with dilute HCl?",
		"options":       map[string]string{"A": "Oxygen", "B": "Hydrogen", "C": "Chlorine", "D": "Nitrogen"},
		"correctAnswer": "b",
		"subject":       "chemistry",
		"chapter":       "Redox Reactions",
		"difficulty":    "Easy",
	})
	require.Equal(t, http.StatusCreated, status, body)
	created := data(body)
	assert.Equal(t, "B", created["correctAnswer"])
	assert.Equal(t, "Chemistry", created["subject"])
	path := fmt.Sprintf("/api/admin/questions/%d", uint(created["id"].(float64)))

	status, body = s.do(t, http.MethodPut, path, admin, map[string]interface{}{"difficulty": "Hard"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Hard", data(body)["difficulty"])

	status, body = s.do(t, http.MethodGet, "/api/questions/chapters?subject=Chemistry", user, nil)
	require.Equal(t, http.StatusOK, status)
	found := false
	for _, c := range body["data"].([]interface{}) {
		if c.(map[string]interface{})["chapter"] == "Redox Reactions" {
			found = true
		}
	}
	assert.True(t, found)

	status, _ = s.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/admin/analytics", admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "practice_sessions_active")
}
