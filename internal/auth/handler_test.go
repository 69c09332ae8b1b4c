package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type memoryRepo struct {
	accounts map[string]*Account
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[string]*Account), nextID: 1}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	if a, ok := m.accounts[email]; ok {
		return a, nil
	}
	return nil, shared.ErrInvalidCredentials
}

func (m *memoryRepo) FindByID(_ context.Context, id int64) (*Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) ListAccountIDs(context.Context) ([]int64, error) {
	var ids []int64
	for _, a := range m.accounts {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (m *memoryRepo) CreateAccount(_ context.Context, email, name, hash string) (*Account, error) {
	if _, ok := m.accounts[email]; ok {
		return nil, httpx.ErrDuplicate
	}
	a := &Account{ID: m.nextID, Email: email, Name: name, PasswordHash: hash, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.nextID++
	m.accounts[email] = a
	return a, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, accountID int64, hash string) error {
	for _, a := range m.accounts {
		if a.ID == accountID {
			a.PasswordHash = hash
			return nil
		}
	}
	return httpx.ErrNotFound
}

func (m *memoryRepo) CreateSession(context.Context, string, int64, time.Time, string, string) error {
	return nil
}

func (m *memoryRepo) DeleteSession(context.Context, string) error { return nil }

func (m *memoryRepo) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type captureMailer struct {
	lastTo   string
	lastBody string
}

func (c *captureMailer) SendMail(_ context.Context, to, _, body string) error {
	c.lastTo = to
	c.lastBody = body
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memoryRepo, *captureMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	mailer := &captureMailer{}
	service := NewService(repo, NewOTPStore(client), mailer)
	sessions := shared.NewSessionManager(client, "petroflow_session", "session-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewHandler(logger, service, sessions, csrf), repo, mailer
}

func seedAccount(t *testing.T, repo *memoryRepo, email, password string) *Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	account, err := repo.CreateAccount(context.Background(), email, "Test Account", string(hash))
	require.NoError(t, err)
	return account
}

func withSession(r *http.Request) (*http.Request, *shared.Session) {
	sess := &shared.Session{ID: "sess-test"}
	return r.WithContext(shared.ContextWithSession(r.Context(), sess)), sess
}

func TestHandleLoginSuccess(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	seedAccount(t, repo, "ops@petroflow.test", "strongpassword")

	body, _ := json.Marshal(map[string]string{"email": "ops@petroflow.test", "password": "strongpassword"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, sess := withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), sess.User())

	var got Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ops@petroflow.test", got.Email)
	require.NotContains(t, rec.Body.String(), "password_hash")
}

func TestHandleLoginBadPassword(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	seedAccount(t, repo, "ops@petroflow.test", "strongpassword")

	body, _ := json.Marshal(map[string]string{"email": "ops@petroflow.test", "password": "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, sess := withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, sess.User())
}

func TestHandleSignUpDuplicate(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	seedAccount(t, repo, "ops@petroflow.test", "strongpassword")

	body, _ := json.Marshal(map[string]string{"email": "ops@petroflow.test", "name": "Dup", "password": "strongpassword"})
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body))
	req, _ = withSession(req)
	rec := httptest.NewRecorder()

	handler.handleSignUp(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	handler, repo, mailer := newTestHandler(t)
	seedAccount(t, repo, "ops@petroflow.test", "strongpassword")

	body, _ := json.Marshal(map[string]string{"email": "ops@petroflow.test"})
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.handleForgotPassword(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "ops@petroflow.test", mailer.lastTo)

	code := regexp.MustCompile(`\d{6}`).FindString(mailer.lastBody)
	require.Len(t, code, 6)

	body, _ = json.Marshal(map[string]string{"email": "ops@petroflow.test", "code": code, "new_password": "anotherpassword"})
	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.handleResetPassword(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	account, err := repo.FindByEmail(context.Background(), "ops@petroflow.test")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("anotherpassword")))

	// The code is consumed, replaying it must fail.
	body, _ = json.Marshal(map[string]string{"email": "ops@petroflow.test", "code": code, "new_password": "thirdpassword"})
	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.handleResetPassword(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordUnknownEmailStillNoContent(t *testing.T) {
	handler, _, mailer := newTestHandler(t)

	body, _ := json.Marshal(map[string]string{"email": "nobody@petroflow.test"})
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.handleForgotPassword(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, mailer.lastTo)
}
