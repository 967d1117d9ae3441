package httpapp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	httpapp "todosome/internal/app/http"
	"todosome/internal/config"
	"todosome/internal/domain/models"
	"todosome/internal/http/response"
	"todosome/internal/lib/jwt"
	"todosome/internal/services/access"
	"todosome/internal/services/auth"
	"todosome/internal/services/tasks"
	"todosome/internal/services/verification"
	"todosome/internal/storage/memory"
)

type fakeMailer struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (m *fakeMailer) SendVerificationMail(_ context.Context, emailTo string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tokens[emailTo] = token
	return nil
}

func (m *fakeMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type brokenPinger struct{}

func (brokenPinger) Ping(context.Context) error { return errors.New("down") }

func newServer(t *testing.T) (http.Handler, *fakeMailer) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	mailer := &fakeMailer{tokens: make(map[string]string)}
	tokenProvider, err := jwt.New("test-secret", time.Hour)
	require.NoError(t, err)

	authService := auth.New(log, store, store, store, verification.New(log, store, store), mailer, tokenProvider, time.Second)
	app := httpapp.New(
		config.EnvLocal,
		log,
		config.HTTPConfig{Address: ":0", BasePath: "/api", Timeout: time.Second},
		authService,
		tasks.New(log, store, store),
		access.New(log, tokenProvider),
		store,
	)
	return app.Handler(), mailer
}

func do(t *testing.T, h http.Handler, method string, path string, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func errorKind(t *testing.T, body []byte) string {
	t.Helper()
	var e response.ErrorBody
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Error
}

func TestAuthFlow_ConcreteScenario(t *testing.T) {
	h, mailer := newServer(t)
	creds := map[string]string{"email": "a@x.com", "password": "secret1"}

	status, body := do(t, h, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, status, string(body))
	var signup map[string]string
	require.NoError(t, json.Unmarshal(body, &signup))
	assert.Equal(t, "a@x.com", signup["email"])
	assert.NotContains(t, signup, "token")

	status, body = do(t, h, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.KindEmailNotVerified, errorKind(t, body))

	token := mailer.token("a@x.com")
	require.NotEmpty(t, token)
	status, _ = do(t, h, http.MethodPost, "/api/auth/verify/"+token, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, h, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	var login map[string]string
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login["token"])
	assert.Equal(t, "a@x.com", login["email"])

	status, body = do(t, h, http.MethodGet, "/api/auth/profile", login["token"], nil)
	require.Equal(t, http.StatusOK, status)
	var profile models.Profile
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, login["id"], profile.ID)
	assert.Equal(t, "a@x.com", profile.Email)

	status, body = do(t, h, http.MethodGet, "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.KindUnauthorized, errorKind(t, body))
}

func TestAuthFlow_Failures(t *testing.T) {
	h, mailer := newServer(t)
	creds := map[string]string{"email": "b@x.com", "password": "secret1"}

	status, _ := do(t, h, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, h, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.KindDuplicateEmail, errorKind(t, body))

	token := mailer.token("b@x.com")
	status, _ = do(t, h, http.MethodPost, "/api/auth/verify/"+token, "", nil)
	require.Equal(t, http.StatusOK, status)
	status, body = do(t, h, http.MethodPost, "/api/auth/verify/"+token, "", nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.KindInvalidToken, errorKind(t, body))

	status, wrongPass := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "b@x.com", "password": "wrong-pass"})
	require.Equal(t, http.StatusUnauthorized, status)
	status, noUser := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "secret1"})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.KindInvalidCredentials, errorKind(t, wrongPass))
	assert.JSONEq(t, string(wrongPass), string(noUser))

	status, body = do(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "not-an-email", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.KindValidationError, errorKind(t, body))

	status, body = do(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "c@x.com", "password": "123"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.KindValidationError, errorKind(t, body))

	status, body = do(t, h, http.MethodGet, "/api/auth/profile", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.KindUnauthorized, errorKind(t, body))
}

func TestAuthFlow_DeliveryFailed(t *testing.T) {
	h, mailer := newServer(t)
	mailer.err = errors.New("smtp is down")
	creds := map[string]string{"email": "d@x.com", "password": "secret1"}

	status, body := do(t, h, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, response.KindDeliveryFailed, errorKind(t, body))

	mailer.err = nil
	status, _ = do(t, h, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, status)
}

func loginAs(t *testing.T, h http.Handler, mailer *fakeMailer, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "secret1"}
	status, _ := do(t, h, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, h, http.MethodPost, "/api/auth/verify/"+mailer.token(email), "", nil)
	require.Equal(t, http.StatusOK, status)
	status, body := do(t, h, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	var login map[string]string
	require.NoError(t, json.Unmarshal(body, &login))
	return login["token"]
}

func TestTasks(t *testing.T) {
	h, mailer := newServer(t)
	owner := loginAs(t, h, mailer, "owner@x.com")
	stranger := loginAs(t, h, mailer, "stranger@x.com")

	status, _ := do(t, h, http.MethodGet, "/api/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := do(t, h, http.MethodPost, "/api/tasks", owner, map[string]string{"title": "buy milk", "description": "2 liters"})
	require.Equal(t, http.StatusCreated, status)
	var task models.Task
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, "buy milk", task.Title)
	assert.False(t, task.Completed)

	status, body = do(t, h, http.MethodPost, "/api/tasks", owner, map[string]string{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.KindValidationError, errorKind(t, body))

	status, body = do(t, h, http.MethodPut, "/api/tasks/"+task.ID, stranger, map[string]bool{"completed": true})
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, response.KindTaskNotFound, errorKind(t, body))

	status, body = do(t, h, http.MethodPut, "/api/tasks/"+task.ID, owner, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, status)
	var updated models.Task
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "2 liters", updated.Description)

	status, body = do(t, h, http.MethodGet, "/api/tasks", stranger, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	status, body = do(t, h, http.MethodGet, "/api/tasks", owner, nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.Task
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)

	status, _ = do(t, h, http.MethodDelete, "/api/tasks/"+task.ID, stranger, nil)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, h, http.MethodDelete, "/api/tasks/"+task.ID, owner, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, h, http.MethodDelete, "/api/tasks/"+task.ID, owner, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestHealthz(t *testing.T) {
	h, _ := newServer(t)
	status, body := do(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokenProvider, err := jwt.New("test-secret", time.Hour)
	require.NoError(t, err)
	store := memory.New()
	broken := httpapp.New(config.EnvLocal, log, config.HTTPConfig{BasePath: "/api"},
		auth.New(log, store, store, store, verification.New(log, store, store), &fakeMailer{tokens: map[string]string{}}, tokenProvider, time.Second),
		tasks.New(log, store, store), access.New(log, tokenProvider), brokenPinger{})
	status, _ = do(t, broken.Handler(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

type blockingMailer struct{}

func (blockingMailer) SendVerificationMail(ctx context.Context, _ string, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSignup_SlowMailReportedWithinWriteTimeout(t *testing.T) {
	const writeTimeout = 300 * time.Millisecond
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	tokenProvider, err := jwt.New("test-secret", time.Hour)
	require.NoError(t, err)

	authService := auth.New(log, store, store, store, verification.New(log, store, store), blockingMailer{}, tokenProvider, writeTimeout/3)
	app := httpapp.New(config.EnvLocal, log, config.HTTPConfig{BasePath: "/api", Timeout: writeTimeout},
		authService, tasks.New(log, store, store), access.New(log, tokenProvider), store)

	srv := httptest.NewUnstartedServer(app.Handler())
	srv.Config.ReadTimeout = writeTimeout
	srv.Config.WriteTimeout = writeTimeout
	srv.Start()
	t.Cleanup(srv.Close)

	data, err := json.Marshal(map[string]string{"email": "slow@x.com", "password": "secret1"})
	require.NoError(t, err)
	resp, err := srv.Client().Post(srv.URL+"/api/auth/signup", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, response.KindDeliveryFailed, errorKind(t, body))

	_, err = store.User(context.Background(), "slow@x.com")
	require.Error(t, err)
}

func TestSignup_EmailTrimmedBeforeValidation(t *testing.T) {
	h, mailer := newServer(t)

	status, body := do(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "  e@x.com ", "password": "secret1"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var signup map[string]string
	require.NoError(t, json.Unmarshal(body, &signup))
	assert.Equal(t, "e@x.com", signup["email"])

	status, _ = do(t, h, http.MethodPost, "/api/auth/verify/"+mailer.token("e@x.com"), "", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": " e@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
}
