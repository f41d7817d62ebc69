package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/artem13815/productivity/api/http"
	"github.com/artem13815/productivity/api/http/handlers"
	"github.com/artem13815/productivity/pkg/auth"
	"github.com/artem13815/productivity/pkg/goal"
	"github.com/artem13815/productivity/pkg/health"
	"github.com/artem13815/productivity/pkg/logging"
	"github.com/artem13815/productivity/pkg/metrics"
	"github.com/artem13815/productivity/pkg/repository/memory"
	"github.com/artem13815/productivity/pkg/security/jwt"
	"github.com/artem13815/productivity/pkg/stats"
	"github.com/artem13815/productivity/pkg/storage/photo"
	"github.com/artem13815/productivity/pkg/task"
)

const (
	testSecret = "test-secret"
	testIssuer = "productivity-api"
)

func newTestApp(t *testing.T, authRequired bool) *fiber.App {
	t.Helper()
	log := logging.Discard()
	uploads := t.TempDir()

	users := memory.NewUserRepository()
	tasks := memory.NewTaskRepository()
	goals := memory.NewGoalRepository()
	tokens := jwt.NewGenerator(testSecret, testIssuer, time.Hour)

	app := apihttp.NewApp(log, []string{"http://localhost:3000"})
	apihttp.Register(app, apihttp.Handlers{
		Auth:   handlers.NewAuthHandler(auth.NewAuthService(users, tokens, photo.NewDiskStore(uploads, "/uploads")), log),
		Tasks:  handlers.NewTaskHandler(task.NewService(tasks), log),
		Goals:  handlers.NewGoalHandler(goal.NewService(goals), log),
		Stats:  handlers.NewStatsHandler(stats.NewService(tasks, goals), log),
		Health: handlers.NewHealthHandler(health.NewService(), log),
	}, apihttp.Options{
		Authenticate: jwt.NewAuthMiddleware(testSecret, testIssuer, authRequired),
		UploadDir:    uploads,
	})
	return app
}

type call struct {
	method string
	path   string
	body   any
	token  string
}

func do(t *testing.T, app *fiber.App, c call) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, rd)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func taskIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	list, ok := body["tasks"].([]any)
	require.True(t, ok, "tasks missing in %v", body)
	ids := make([]string, 0, len(list))
	for _, item := range list {
		ids = append(ids, item.(map[string]any)["id"].(string))
	}
	return ids
}

func createTask(t *testing.T, app *fiber.App, email, title string) string {
	t.Helper()
	status, body := do(t, app, call{method: "POST", path: "/tasks", body: map[string]any{"email": email, "title": title}})
	require.Equal(t, http.StatusCreated, status, body)
	return body["id"].(string)
}

func TestTaskLifecycle(t *testing.T) {
	app := newTestApp(t, false)
	const email = "ann@example.com"

	status, created := do(t, app, call{method: "POST", path: "/tasks", body: map[string]any{"email": email, "title": "Write report"}})
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)
	assert.Equal(t, id, created["_id"])
	assert.Equal(t, false, created["completed"])
	assert.Equal(t, "Write report", created["title"])

	status, updated := do(t, app, call{method: "PATCH", path: "/tasks/" + id, body: map[string]any{"email": email, "completed": true}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "Write report", updated["title"])

	status, listed := do(t, app, call{method: "GET", path: "/tasks?email=" + email})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{id}, taskIDs(t, listed))
	assert.Equal(t, true, listed["tasks"].([]any)[0].(map[string]any)["completed"])

	status, _ = do(t, app, call{method: "DELETE", path: "/tasks/" + id + "?email=" + email})
	assert.Equal(t, http.StatusNoContent, status)

	status, body := do(t, app, call{method: "DELETE", path: "/tasks/" + id + "?email=" + email})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", body["message"])
}

func TestTasks_Validation(t *testing.T) {
	app := newTestApp(t, false)

	status, body := do(t, app, call{method: "GET", path: "/tasks"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email is required", body["message"])

	status, body = do(t, app, call{method: "POST", path: "/tasks", body: map[string]any{"email": "ann@example.com", "title": "   "}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and title are required", body["message"])

	status, body = do(t, app, call{method: "GET", path: "/tasks?email=ann@example.com"})
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, taskIDs(t, body))
}

func TestTasks_OtherOwnerGetsNotFound(t *testing.T) {
	app := newTestApp(t, false)
	id := createTask(t, app, "ann@example.com", "private")

	status, _ := do(t, app, call{method: "PATCH", path: "/tasks/" + id, body: map[string]any{"email": "eve@example.com", "title": "mine now"}})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, call{method: "DELETE", path: "/tasks/" + id + "?email=eve@example.com"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, call{method: "DELETE", path: "/tasks/not-a-uuid?email=ann@example.com"})
	assert.Equal(t, http.StatusNotFound, status)

	_, listed := do(t, app, call{method: "GET", path: "/tasks?email=ann@example.com"})
	require.Len(t, taskIDs(t, listed), 1)
	assert.Equal(t, "private", listed["tasks"].([]any)[0].(map[string]any)["title"])
}

func TestTasks_Reorder(t *testing.T) {
	app := newTestApp(t, false)
	const email = "ann@example.com"
	first := createTask(t, app, email, "first")
	time.Sleep(2 * time.Millisecond)
	second := createTask(t, app, email, "second")
	time.Sleep(2 * time.Millisecond)
	third := createTask(t, app, email, "third")

	_, listed := do(t, app, call{method: "GET", path: "/tasks?email=" + email})
	require.Equal(t, []string{third, second, first}, taskIDs(t, listed))

	status, body := do(t, app, call{method: "PUT", path: "/tasks/" + first + "/position", body: map[string]any{"email": email, "index": 0}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []string{first, third, second}, taskIDs(t, body))

	_, listed = do(t, app, call{method: "GET", path: "/tasks?email=" + email})
	assert.Equal(t, []string{first, third, second}, taskIDs(t, listed))

	fourth := createTask(t, app, email, "fourth")
	_, listed = do(t, app, call{method: "GET", path: "/tasks?email=" + email})
	assert.Equal(t, []string{fourth, first, third, second}, taskIDs(t, listed))

	status, _ = do(t, app, call{method: "PUT", path: "/tasks/" + first + "/position", body: map[string]any{"email": email, "index": -1}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, call{method: "PUT", path: "/tasks/" + first + "/position", body: map[string]any{"email": email}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t, false)
	reg := map[string]any{"email": "ann@example.com", "password": "s3cret", "name": "Ann"}

	status, body := do(t, app, call{method: "POST", path: "/register", body: reg})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "ann@example.com", body["email"])
	assert.Equal(t, "Ann", body["name"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body, "password")

	status, body = do(t, app, call{method: "POST", path: "/register", body: reg})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body["message"])

	status, body = do(t, app, call{method: "POST", path: "/login", body: map[string]any{"email": "ann@example.com", "password": "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = do(t, app, call{method: "POST", path: "/login", body: map[string]any{"email": "ann@example.com"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", body["message"])

	status, body = do(t, app, call{method: "POST", path: "/api/v1/login", body: map[string]any{"email": "ANN@example.com", "password": "s3cret"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ann@example.com", body["email"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
}

func TestRegister_MultipartWithPhoto(t *testing.T) {
	app := newTestApp(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("userData", `{"email":"pic@example.com","password":"pw","name":"Pic"}`))
	fw, err := mw.CreateFormFile("photo", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	url, _ := body["photoUrl"].(string)
	require.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	resp, err = app.Test(httptest.NewRequest("GET", url, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToken_ScopesOwner(t *testing.T) {
	app := newTestApp(t, false)
	_, reg := do(t, app, call{method: "POST", path: "/register", body: map[string]any{"email": "ann@example.com", "password": "pw", "name": "Ann"}})
	token := reg["token"].(string)

	status, created := do(t, app, call{method: "POST", path: "/tasks", token: token, body: map[string]any{"title": "from token"}})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ann@example.com", created["email"])

	status, listed := do(t, app, call{method: "GET", path: "/tasks", token: token})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, taskIDs(t, listed), 1)

	status, body := do(t, app, call{method: "GET", path: "/tasks?email=eve@example.com", token: token})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "email does not match credentials", body["message"])

	status, _ = do(t, app, call{method: "GET", path: "/tasks?email=ann@example.com", token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t, true)

	status, _ := do(t, app, call{method: "GET", path: "/tasks?email=ann@example.com"})
	assert.Equal(t, http.StatusUnauthorized, status)

	// register and login stay open
	status, reg := do(t, app, call{method: "POST", path: "/register", body: map[string]any{"email": "ann@example.com", "password": "pw", "name": "Ann"}})
	require.Equal(t, http.StatusCreated, status)

	status, _ = do(t, app, call{method: "GET", path: "/tasks", token: reg["token"].(string)})
	assert.Equal(t, http.StatusOK, status)
}

func TestGoals(t *testing.T) {
	app := newTestApp(t, false)
	const email = "ann@example.com"

	status, body := do(t, app, call{method: "POST", path: "/goals", body: map[string]any{"email": email, "goal": "Run", "type": "daily"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Type must be one of: weekly, monthly", body["message"])

	status, created := do(t, app, call{method: "POST", path: "/goals", body: map[string]any{"email": email, "goal": "Run 20km", "type": "weekly"}})
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)
	assert.Equal(t, id, created["_id"])

	status, updated := do(t, app, call{method: "PATCH", path: "/goals/" + id, body: map[string]any{"email": email, "type": "monthly"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "monthly", updated["type"])
	assert.Equal(t, "Run 20km", updated["goal"])

	status, listed := do(t, app, call{method: "GET", path: "/goals?email=" + email})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, listed["goals"], 1)

	status, _ = do(t, app, call{method: "DELETE", path: "/goals/" + id + "?email=eve@example.com"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, call{method: "DELETE", path: "/goals/" + id, body: map[string]any{"email": email}})
	assert.Equal(t, http.StatusNoContent, status)
}

func TestStats(t *testing.T) {
	app := newTestApp(t, false)
	const email = "ann@example.com"
	id := createTask(t, app, email, "a")
	createTask(t, app, email, "b")
	do(t, app, call{method: "PATCH", path: "/tasks/" + id, body: map[string]any{"email": email, "completed": true}})
	do(t, app, call{method: "POST", path: "/goals", body: map[string]any{"email": email, "goal": "g", "type": "weekly"}})

	status, body := do(t, app, call{method: "GET", path: "/stats?email=" + email})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["totalTasks"])
	assert.EqualValues(t, 1, body["completedTasks"])
	assert.EqualValues(t, 1, body["pendingTasks"])
	assert.EqualValues(t, 50, body["completionRate"])
	assert.EqualValues(t, 1, body["weeklyGoals"])
	assert.EqualValues(t, 0, body["monthlyGoals"])
}

func TestHealthReadyAndMetricsEndpoints(t *testing.T) {
	app := newTestApp(t, false)

	status, body := do(t, app, call{method: "GET", path: "/health"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = do(t, app, call{method: "GET", path: "/ready"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	app := apihttp.NewApp(logging.New(&buf, "info", "json"), []string{"http://localhost:3000"})
	app.Get("/explode", func(*fiber.Ctx) error { panic("nil map write") })
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/explode", "500")
	before := testutil.ToFloat64(counter)

	status, body := do(t, app, call{method: "GET", path: "/explode"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), `"path":"/explode"`)
	assert.Contains(t, buf.String(), "nil map write")
}

func TestMetricsScrapeAfterMixedTraffic(t *testing.T) {
	app := newTestApp(t, false)
	const email = "ann@example.com"

	for i := 0; i < 3; i++ {
		id := createTask(t, app, email, "t")
		do(t, app, call{method: "GET", path: "/tasks?email=" + email})
		do(t, app, call{method: "PATCH", path: "/tasks/" + id, body: map[string]any{"email": email, "completed": true}})
		do(t, app, call{method: "PUT", path: "/api/v1/tasks/" + id + "/position", body: map[string]any{"email": email, "index": 0}})
		do(t, app, call{method: "DELETE", path: "/tasks/" + id + "?email=" + email})
		do(t, app, call{method: "POST", path: "/goals", body: map[string]any{"email": email, "goal": "g", "type": "monthly"}})
		do(t, app, call{method: "OPTIONS", path: "/goals"})
	}

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		assert.Contains(t, string(raw), `route="/tasks/:id"`)
	}
}
