package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-be/internal/api"
	"plantcare-be/internal/auth"
	"plantcare-be/internal/database"
	"plantcare-be/internal/models"
	"plantcare-be/internal/monitoring"
	"plantcare-be/internal/services"
	"plantcare-be/internal/store"
	"plantcare-be/internal/uploads"
	"plantcare-be/internal/web"
	"plantcare-be/internal/websocket"
)

// fakeAnalysis records pipeline invocations so tests can assert that gated
// requests never reach it.
type fakeAnalysis struct {
	calls  int
	result models.AnalysisResult
	err    error
}

func (f *fakeAnalysis) Analyze(context.Context, models.AnalysisRequest) (models.AnalysisResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeEvents struct{}

func (fakeEvents) CreateEvent(eventType, level, message string, userID *string) (models.Event, error) {
	return models.Event{ID: "e-1", Type: eventType, Level: level, Message: message, UserID: userID}, nil
}

func (fakeEvents) GetRecentEvents(int) ([]models.Event, error) {
	return []models.Event{{ID: "e-1", Type: "auth.signin", Level: "info", Message: "alice signed in"}}, nil
}

type testEnv struct {
	server   *httptest.Server
	analysis *fakeAnalysis
	db       *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // A second pool connection would see a fresh empty memory DB
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	uploadStore, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	render, err := web.NewRenderer()
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()

	sessions := auth.NewManager(auth.NewSessionStore(time.Hour), auth.NewTokenCodec("test-secret"))
	analysis := &fakeAnalysis{}
	events := fakeEvents{}
	monitor := monitoring.NewSystemMonitor(events, hub)

	router := api.NewRouter(sessions,
		services.NewUserService(store.NewSQLiteStore(db)),
		analysis, events, monitor, uploadStore, hub, render)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, analysis: analysis, db: db}
}

// client returns an HTTP client that keeps cookies and does not follow
// redirects, so tests can assert on Location headers.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) postForm(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.Post(e.server.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(e.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) signup(t *testing.T, c *http.Client, username, email, password string) *http.Response {
	return e.postForm(t, c, "/signup", url.Values{
		"username":        {username},
		"email":           {email},
		"password":        {password},
		"confirmPassword": {password},
	})
}

func (e *testEnv) signin(t *testing.T, c *http.Client, email, password string) *http.Response {
	return e.postForm(t, c, "/signin", url.Values{"email": {email}, "password": {password}})
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestProtectedRoutesRedirectWhenUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	for _, path := range []string{"/", "/analyze", "/uploads/x.jpg"} {
		resp := env.get(t, c, path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/signin", resp.Header.Get("Location"), path)
	}
}

func TestSignupSigninFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/signin?registered=1", resp.Header.Get("Location"))

	resp = env.get(t, c, "/signin?registered=1")
	assert.Contains(t, body(t, resp), "Account created successfully")

	resp = env.signin(t, c, "alice@example.com", "Secr3t!")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = env.get(t, c, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "alice")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = env.signup(t, c, "impostor", "alice@example.com", "other")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Email already registered")

	var count int
	require.NoError(t, env.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "duplicate signup must not add a record")
}

func TestSignup_PasswordMismatch(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := env.postForm(t, c, "/signup", url.Values{
		"username":        {"alice"},
		"email":           {"alice@example.com"},
		"password":        {"one"},
		"confirmPassword": {"two"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Passwords do not match")
}

func TestSignin_FailuresLookIdentical(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	wrongPassword := env.signin(t, c, "alice@example.com", "wrong")
	unknownEmail := env.signin(t, c, "nobody@example.com", "Secr3t!")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, body(t, wrongPassword), body(t, unknownEmail),
		"responses must not reveal whether the email exists")
}

func TestLogout_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	resp := env.signin(t, c, "alice@example.com", "Secr3t!")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp = env.get(t, c, "/logout")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/signin", resp.Header.Get("Location"))
	}

	resp = env.get(t, c, "/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "still unauthenticated after double logout")
}

func TestAnalyze_GateBlocksPipeline(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	payload, contentType := multipartImage(t, "leaf.jpg", "Nairobi")
	resp, err := c.Post(env.server.URL+"/analyze", contentType, payload)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 0, env.analysis.calls, "pipeline must never run for a gated request")
}

func TestAnalyze_Success(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	env.signin(t, c, "alice@example.com", "Secr3t!")

	env.analysis.result = models.AnalysisResult{
		Prediction:       models.Prediction{Label: "Powdery Mildew", Confidence: 0.91},
		Weather:          &models.WeatherSnapshot{City: "Nairobi", TempCelsius: 22, Condition: "Clear"},
		WeatherAvailable: true,
		Advice:           "Prune affected leaves.",
		ImageName:        "stored.jpg",
		CreatedAt:        time.Now(),
	}

	payload, contentType := multipartImage(t, "leaf.jpg", "Nairobi")
	resp, err := c.Post(env.server.URL+"/analyze", contentType, payload)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, env.analysis.calls)

	page := body(t, resp)
	assert.Contains(t, page, "Powdery Mildew")
	assert.Contains(t, page, "91.00%")
	assert.Contains(t, page, "Clear, 22.0°C")
	assert.Contains(t, page, "Prune affected leaves.")
}

func TestAnalyze_RejectsUnsupportedFile(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	env.signin(t, c, "alice@example.com", "Secr3t!")

	payload, contentType := multipartImage(t, "notes.txt", "Nairobi")
	resp, err := c.Post(env.server.URL+"/analyze", contentType, payload)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, env.analysis.calls)
}

func TestAPIRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	for _, path := range []string{"/api/events", "/api/system"} {
		resp := env.get(t, c, path)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	env.signup(t, c, "alice", "alice@example.com", "Secr3t!")
	env.signin(t, c, "alice@example.com", "Secr3t!")

	resp := env.get(t, c, "/api/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "auth.signin")
}

func multipartImage(t *testing.T, filename, city string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("city", city))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
