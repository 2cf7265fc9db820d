package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/auth"
	"github.com/siarkonyar/fitnessChronicleServer/internal/config"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	dir := t.TempDir()
	repos, err := storage.NewFileRepositories(
		filepath.Join(dir, "labels.json"),
		filepath.Join(dir, "assignments.json"),
		filepath.Join(dir, "exercises.json"),
		filepath.Join(dir, "names.json"),
		logger,
	)
	assert.NoError(t, err)

	cfg := &config.Config{Env: "development"}
	provider := auth.NewLocalAuthProvider("MOCK-TOKEN", logger)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	protected := r.Group("/")
	protected.Use(auth.Middleware(provider, cfg))
	Routes(protected, NewApp(logger, repos))
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer MOCK-TOKEN")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createLabel(t *testing.T, r *gin.Engine, value string) string {
	t.Helper()
	w := doRequest(r, "POST", "/api/labels", `{"value":"`+value+`","description":"desc"}`)
	assert.Equal(t, 200, w.Code)
	var label internal.Label
	env := decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &label))
	assert.NotEmpty(t, label.ID)
	return label.ID
}

func TestRejectsMissingToken(t *testing.T) {
	r := setupRouter(t)
	req, _ := http.NewRequest("GET", "/api/labels", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	req, _ = http.NewRequest("GET", "/api/labels", nil)
	req.Header.Set("Authorization", "Bearer WRONG")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}

func TestRequestIDEchoedOnResponse(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, "GET", "/api/labels", "")
	assert.Equal(t, 200, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req, _ := http.NewRequest("GET", "/api/labels", nil)
	req.Header.Set("Authorization", "Bearer MOCK-TOKEN")
	req.Header.Set("X-Request-ID", "corr-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "corr-42", w.Header().Get("X-Request-ID"))
}

func TestLabelValidationDetail(t *testing.T) {
	r := setupRouter(t)
	w := doRequest(r, "POST", "/api/labels", `{"value":"elevenchars","description":""}`)
	assert.Equal(t, 400, w.Code)
	env := decodeEnvelope(t, w)
	assert.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "value")
	assert.Contains(t, env.Error.Fields, "description")
}

func TestLabelCRUDOverHTTP(t *testing.T) {
	r := setupRouter(t)
	id := createLabel(t, r, "push")

	w := doRequest(r, "GET", "/api/labels", "")
	assert.Equal(t, 200, w.Code)
	var labels []internal.Label
	env := decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &labels))
	assert.Len(t, labels, 1)

	w = doRequest(r, "PATCH", "/api/labels/"+id, `{"description":"updated"}`)
	assert.Equal(t, 200, w.Code)
	var label internal.Label
	env = decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &label))
	assert.Equal(t, "push", label.Value)
	assert.Equal(t, "updated", label.Description)

	w = doRequest(r, "DELETE", "/api/labels/"+id, "")
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "GET", "/api/labels/"+id, "")
	assert.Equal(t, 404, w.Code)
}

func TestDayAssignmentFlowOverHTTP(t *testing.T) {
	r := setupRouter(t)
	first := createLabel(t, r, "push")
	second := createLabel(t, r, "pull")

	w := doRequest(r, "PUT", "/api/days/2025-03-10/label", `{"label_id":"`+first+`"}`)
	assert.Equal(t, 200, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["created"])

	w = doRequest(r, "PUT", "/api/days/2025-03-10/label", `{"label_id":"`+second+`"}`)
	assert.Equal(t, 200, w.Code)
	env = decodeEnvelope(t, w)
	assert.Equal(t, false, env.Meta["created"])

	w = doRequest(r, "GET", "/api/days/2025-03-10", "")
	assert.Equal(t, 200, w.Code)
	var view struct {
		Label *internal.Label `json:"label"`
	}
	env = decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &view))
	assert.NotNil(t, view.Label)
	assert.Equal(t, "pull", view.Label.Value)

	w = doRequest(r, "GET", "/api/days?month=2025-03", "")
	assert.Equal(t, 200, w.Code)
	var days []map[string]string
	env = decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &days))
	assert.Len(t, days, 1)
	assert.Equal(t, "2025-03-10", days[0]["date"])
	assert.Equal(t, "pull", days[0]["value"])

	w = doRequest(r, "DELETE", "/api/days/2025-03-10", "")
	assert.Equal(t, 200, w.Code)

	w = doRequest(r, "GET", "/api/days/2025-03-10", "")
	assert.Equal(t, 200, w.Code)
	env = decodeEnvelope(t, w)
	assert.Nil(t, env.Data)

	w = doRequest(r, "DELETE", "/api/days/2025-03-10", "")
	assert.Equal(t, 404, w.Code)
}

func TestAssignUnknownLabelOverHTTP(t *testing.T) {
	r := setupRouter(t)
	w := doRequest(r, "PUT", "/api/days/2025-03-10/label", `{"label_id":"missing"}`)
	assert.Equal(t, 404, w.Code)
}

func TestAssignInvalidDateOverHTTP(t *testing.T) {
	r := setupRouter(t)
	id := createLabel(t, r, "push")
	w := doRequest(r, "PUT", "/api/days/10-03-2025/label", `{"label_id":"`+id+`"}`)
	assert.Equal(t, 400, w.Code)
}

func TestExerciseFlowOverHTTP(t *testing.T) {
	r := setupRouter(t)

	body := `{"date":"2025-02-03","name":"Bench Press","sets":[{"set_type":"normal","measure":"kg","value":"80","reps":"5"}]}`
	w := doRequest(r, "POST", "/api/exercises", body)
	assert.Equal(t, 200, w.Code)
	var log internal.ExerciseLog
	env := decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &log))
	assert.NotEmpty(t, log.ID)

	w = doRequest(r, "GET", "/api/exercises?month=2025-02", "")
	assert.Equal(t, 200, w.Code)
	var logs []internal.ExerciseLog
	env = decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &logs))
	assert.Len(t, logs, 1)

	w = doRequest(r, "GET", "/api/exercise-names", "")
	assert.Equal(t, 200, w.Code)
	var names []internal.ExerciseName
	env = decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, &names))
	assert.Len(t, names, 1)
	assert.Equal(t, "bench press", names[0].Name)

	// Bad set enum is rejected with field detail.
	w = doRequest(r, "POST", "/api/exercises", `{"date":"2025-02-03","name":"Squat","sets":[{"set_type":"mega","measure":"kg"}]}`)
	assert.Equal(t, 400, w.Code)
}
