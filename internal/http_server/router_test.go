package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"whisperbox/internal/auth"
	httpserver "whisperbox/internal/http_server"
	"whisperbox/internal/inbox"
	"whisperbox/internal/lib/validation"
	"whisperbox/internal/models"
	"whisperbox/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionSecret = "test-secret"

type capturePublisher struct {
	jobs []models.EmailJob
}

func (p *capturePublisher) SendEmail(_ context.Context, job models.EmailJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

type apiResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Token       string           `json:"token"`
	IsAccepting bool             `json:"is_accepting"`
	Messages    []models.Message `json:"messages"`
}

type fixture struct {
	router http.Handler
	pub    *capturePublisher
}

func newFixture() *fixture {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewRepo()
	pub := &capturePublisher{}

	authService := auth.New(
		log, repo, repo, memory.NewLimiter(), pub,
		time.Hour, time.Hour, sessionSecret, 5, 15*time.Minute,
	)
	inboxService := inbox.New(log, repo)

	return &fixture{
		router: httpserver.NewRouter(log, validation.New(), authService, inboxService, sessionSecret),
		pub:    pub,
	}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return rec.Code, resp
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture()

	// Signup issues a 6-digit code.
	code, resp := f.do(t, http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, resp.Success)
	require.Len(t, f.pub.jobs, 1)

	verifyCode := f.pub.jobs[0].Code
	require.Len(t, verifyCode, 6)

	// Wrong code is rejected.
	wrong := "000000"
	if verifyCode == wrong {
		wrong = "000001"
	}
	code, resp = f.do(t, http.MethodPost, "/verify-code", "", map[string]string{
		"username": "alice", "code": wrong,
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.False(t, resp.Success)

	// Correct code verifies.
	code, resp = f.do(t, http.MethodPost, "/verify-code", "", map[string]string{
		"username": "alice", "code": verifyCode,
	})
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)

	// Login returns a session token.
	code, resp = f.do(t, http.MethodPost, "/login", "", map[string]string{
		"identifier": "alice", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)

	token := resp.Token

	// Fresh account accepts messages.
	code, resp = f.do(t, http.MethodGet, "/accept-messages", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.IsAccepting)

	// Anonymous intake.
	code, resp = f.do(t, http.MethodPost, "/send-message", "", map[string]string{
		"username": "alice", "content": "hello from a stranger",
	})
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)

	// Retrieval sees the message.
	code, resp = f.do(t, http.MethodGet, "/messages", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "hello from a stranger", resp.Messages[0].Content)

	// Toggle the accept-flag off.
	code, resp = f.do(t, http.MethodPost, "/accept-messages", token, map[string]bool{
		"accept_messages": false,
	})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.IsAccepting)

	// Intake is now rejected and the inbox does not grow.
	code, resp = f.do(t, http.MethodPost, "/send-message", "", map[string]string{
		"username": "alice", "content": "hello once more friend",
	})
	require.Equal(t, http.StatusNotFound, code)
	require.False(t, resp.Success)

	code, resp = f.do(t, http.MethodGet, "/messages", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Messages, 1)

	// The live status endpoint reflects the toggle made after login.
	code, resp = f.do(t, http.MethodGet, "/accept-messages", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.IsAccepting)
}

func TestMessagesOrderedNewestFirst(t *testing.T) {
	f := newFixture()

	_, _ = f.do(t, http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})
	_, _ = f.do(t, http.MethodPost, "/verify-code", "", map[string]string{
		"username": "alice", "code": f.pub.jobs[0].Code,
	})
	_, login := f.do(t, http.MethodPost, "/login", "", map[string]string{
		"identifier": "a@x.com", "password": "pw123",
	})
	require.NotEmpty(t, login.Token)

	for _, content := range []string{
		"the first anonymous note",
		"the second anonymous note",
		"the third anonymous note",
	} {
		code, resp := f.do(t, http.MethodPost, "/send-message", "", map[string]string{
			"username": "alice", "content": content,
		})
		require.Equal(t, http.StatusOK, code)
		require.True(t, resp.Success)
	}

	code, resp := f.do(t, http.MethodGet, "/messages", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Messages, 3)

	for i := 1; i < len(resp.Messages); i++ {
		assert.False(t, resp.Messages[i].CreatedAt.After(resp.Messages[i-1].CreatedAt))
	}
}

func TestSignupValidation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		body map[string]string
	}{
		{"invalid username", map[string]string{"username": "a", "email": "a@x.com", "password": "pw123"}},
		{"invalid email", map[string]string{"username": "alice", "email": "not-an-email", "password": "pw123"}},
		{"missing password", map[string]string{"username": "alice", "email": "a@x.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := f.do(t, http.MethodPost, "/signup", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, resp.Success)
		})
	}
}

func TestCheckUsername(t *testing.T) {
	f := newFixture()

	_, _ = f.do(t, http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})

	// Unverified signups do not reserve the name.
	code, resp := f.do(t, http.MethodGet, "/check-username?username=alice", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	_, _ = f.do(t, http.MethodPost, "/verify-code", "", map[string]string{
		"username": "alice", "code": f.pub.jobs[0].Code,
	})

	code, resp = f.do(t, http.MethodGet, "/check-username?username=alice", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)

	code, resp = f.do(t, http.MethodGet, "/check-username?username=bob", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	for _, bad := range []string{"a", "way_too_long_username_here", "john%20doe"} {
		code, resp = f.do(t, http.MethodGet, "/check-username?username="+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, "username %q", bad)
		assert.False(t, resp.Success)
	}
}

func TestVerifyCodeDecodesUsername(t *testing.T) {
	f := newFixture()

	// The signup boundary rejects spaces, so seed through the service
	// boundary is not possible here; an encoded username must still
	// resolve to its decoded form and answer NotFound consistently.
	code, resp := f.do(t, http.MethodPost, "/verify-code", "", map[string]string{
		"username": "john%20doe", "code": "123456",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "User not found", resp.Message)
}

func TestSendMessageContentBounds(t *testing.T) {
	f := newFixture()

	_, _ = f.do(t, http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})
	_, _ = f.do(t, http.MethodPost, "/verify-code", "", map[string]string{
		"username": "alice", "code": f.pub.jobs[0].Code,
	})

	code, resp := f.do(t, http.MethodPost, "/send-message", "", map[string]string{
		"username": "alice", "content": "too short",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)

	long := make([]byte, 301)
	for i := range long {
		long[i] = 'x'
	}
	code, resp = f.do(t, http.MethodPost, "/send-message", "", map[string]string{
		"username": "alice", "content": string(long),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFixture()

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/messages"},
		{http.MethodGet, "/accept-messages"},
		{http.MethodPost, "/accept-messages"},
	} {
		code, resp := f.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", route.method, route.path)
		assert.False(t, resp.Success)
	}
}

func TestSignupRateLimitedPerClient(t *testing.T) {
	f := newFixture()

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		return rec.Code
	}

	for i := 0; i < 5; i++ {
		require.NotEqual(t, http.StatusTooManyRequests, hit("203.0.113.7:1000"))
	}

	// The sixth request from the same client is throttled; a different
	// client still gets through.
	assert.Equal(t, http.StatusTooManyRequests, hit("203.0.113.7:1000"))
	assert.NotEqual(t, http.StatusTooManyRequests, hit("198.51.100.9:2000"))
}

func TestUnverifiedLoginRejected(t *testing.T) {
	f := newFixture()

	_, _ = f.do(t, http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})

	code, resp := f.do(t, http.MethodPost, "/login", "", map[string]string{
		"identifier": "alice", "password": "pw123",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, resp.Success)
}
