package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorbot/internal/app"
	"github.com/abhisek/tutorbot/internal/classify"
	"github.com/abhisek/tutorbot/internal/dispatch"
	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/guide"
	"github.com/abhisek/tutorbot/internal/llm"
	"github.com/abhisek/tutorbot/internal/progressagent"
	"github.com/abhisek/tutorbot/internal/quizmaster"
	"github.com/abhisek/tutorbot/internal/session"
	"github.com/abhisek/tutorbot/internal/tutor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	router *gin.Engine
	mock   *llm.MockProvider
	repo   *docstore.Repo
}

func newHarness() *harness {
	mock := llm.NewMockProvider()
	repo := docstore.NewRepo(docstore.NewMemory())

	t := tutor.New(mock, tutor.DefaultConfig())
	q := quizmaster.New(mock, repo, quizmaster.DefaultConfig())
	g := guide.New(mock, repo, guide.DefaultConfig())
	p := progressagent.New(mock, repo, progressagent.DefaultConfig())

	d := dispatch.New(t, q, g, p, classify.HeuristicExtractor{}, repo, event.NewRecorder(), dispatch.DefaultConfig())
	a := app.New(session.NewRegistry(), d, repo, nil)

	srv := New(DefaultConfig(), a, t, q, g, p, repo, nil)
	return &harness{router: srv.Router(), mock: mock, repo: repo}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "response: %s", w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestCreateSessionValidation(t *testing.T) {
	h := newHarness()

	w := h.do(t, http.MethodPost, "/api/session", map[string]any{"name": "Asha"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing student_id")

	w = h.do(t, http.MethodPost, "/api/session", map[string]any{
		"student_id":       "s1",
		"difficulty_level": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "difficulty out of range")
}

func TestSessionAndMessageFlow(t *testing.T) {
	h := newHarness()
	h.mock.AddResponse(`"Four."`)

	w := h.do(t, http.MethodPost, "/api/session", map[string]any{
		"student_id": "s1",
		"topic":      "fractions",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sessionID, _ := decode(t, w)["session_id"].(string)
	require.NotEmpty(t, sessionID)

	w = h.do(t, http.MethodPost, "/api/message", map[string]any{
		"session_id": sessionID,
		"student_id": "s1",
		"message":    "what is 2 + 2?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Four.", body["response"])
	assert.Equal(t, false, body["fallback"])

	w = h.do(t, http.MethodPost, "/api/session/end", map[string]any{
		"session_id":       sessionID,
		"duration_minutes": 10,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMessageModelFailureStillAnswers(t *testing.T) {
	h := newHarness()
	h.mock.AddError(&llm.ErrProviderUnavailable{Err: errors.New("timeout")})

	w := h.do(t, http.MethodPost, "/api/message", map[string]any{
		"session_id": "sess-1",
		"student_id": "s1",
		"message":    "why is the sky blue?",
	})
	require.Equal(t, http.StatusOK, w.Code, "a turn always answers")
	body := decode(t, w)
	assert.Equal(t, true, body["fallback"])
	assert.NotContains(t, body["response"], "timeout", "internal error must not leak")
}

func TestEndSessionUnknown(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodPost, "/api/session/end", map[string]any{"session_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func quizJSON(n int) string {
	questions := make([]map[string]any, n)
	for i := range n {
		questions[i] = map[string]any{
			"text": "Question?",
			"options": map[string]string{
				"A": "right", "B": "wrong", "C": "also wrong", "D": "still wrong",
			},
			"correct_option": "A",
			"explanation":    "Because A.",
			"concepts":       []string{"concept"},
		}
	}
	raw, _ := json.Marshal(map[string]any{"questions": questions})
	return string(raw)
}

func TestGenerateQuizHidesAnswers(t *testing.T) {
	h := newHarness()
	h.mock.AddResponse(quizJSON(3))

	w := h.do(t, http.MethodPost, "/api/quiz/generate", map[string]any{
		"student_id":     "s1",
		"topic":          "fractions",
		"question_count": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correct_option", "correct options must not leak")

	body := decode(t, w)
	assert.NotEmpty(t, body["quiz_id"])
	questions, _ := body["questions"].([]any)
	assert.Len(t, questions, 3)
}

func TestEvaluateAnswer(t *testing.T) {
	h := newHarness()
	h.mock.AddResponse(quizJSON(2))

	w := h.do(t, http.MethodPost, "/api/quiz/generate", map[string]any{
		"student_id": "s1",
		"topic":      "fractions",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quizID, _ := decode(t, w)["quiz_id"].(string)
	require.NotEmpty(t, quizID)

	w = h.do(t, http.MethodPost, "/api/quiz/evaluate", map[string]any{
		"student_id":     "s1",
		"quiz_id":        quizID,
		"question_index": 0,
		"answer":         "A",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["correct"])
	assert.Equal(t, "A", body["correct_option"])
}

func TestFollowUpQuizTargetsMissedConcepts(t *testing.T) {
	h := newHarness()
	h.mock.AddResponse(quizJSON(2))
	h.mock.AddResponse(`"Good try."`)
	h.mock.AddResponse(quizJSON(2))

	w := h.do(t, http.MethodPost, "/api/quiz/generate", map[string]any{
		"student_id": "s1",
		"topic":      "fractions",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quizID, _ := decode(t, w)["quiz_id"].(string)

	// One wrong answer so there is a missed concept to follow up on.
	w = h.do(t, http.MethodPost, "/api/quiz/evaluate", map[string]any{
		"student_id":     "s1",
		"quiz_id":        quizID,
		"question_index": 0,
		"answer":         "B",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodPost, "/api/quiz/follow-up", map[string]any{
		"student_id": "s1",
		"quiz_id":    quizID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["quiz_id"])
	assert.NotEqual(t, quizID, body["quiz_id"])
}

func TestEvaluateAnswerMissingFields(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodPost, "/api/quiz/evaluate", map[string]any{"student_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizResultNotFound(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodGet, "/api/quiz/result?student_id=s1&quiz_id=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDifficultyRecommendationDefaults(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodGet, "/api/difficulty-recommendation?student_id=s1&topic=fractions", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, float64(docstore.DefaultDifficulty), body["current_level"])
	assert.Equal(t, float64(docstore.DefaultDifficulty), body["recommended_level"])
}

func TestHintRequiresParams(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodGet, "/api/hint?student_id=s1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMisconception(t *testing.T) {
	h := newHarness()
	h.mock.AddResponse(`"Dividing by a fraction multiplies by its reciprocal."`)

	w := h.do(t, http.MethodPost, "/api/misconception", map[string]any{
		"student_id":    "s1",
		"topic":         "fractions",
		"misconception": "dividing by 1/2 makes a number smaller",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Dividing by a fraction multiplies by its reciprocal.", decode(t, w)["explanation"])
}
