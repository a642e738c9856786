package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/DonzTea/cms-crud-restful-api/internal/auth"
	"github.com/DonzTea/cms-crud-restful-api/internal/platform/cache"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	"github.com/DonzTea/cms-crud-restful-api/internal/users"
	"github.com/DonzTea/cms-crud-restful-api/jobs"
	_ "github.com/DonzTea/cms-crud-restful-api/testing"
)

type stubRepo struct {
	user       *auth.User
	resetHash  string
	resetUntil time.Time
	newHash    string
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) SetResetToken(ctx context.Context, userID int64, tokenHash string, expires time.Time) error {
	s.resetHash, s.resetUntil = tokenHash, expires
	return nil
}

func (s *stubRepo) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*auth.User, error) {
	if s.resetHash == "" || tokenHash != s.resetHash || !s.resetUntil.After(now) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	s.newHash = passwordHash
	s.resetHash = ""
	return nil
}

type stubRegistrar struct {
	account users.Account
	err     error
}

func (s *stubRegistrar) Register(ctx context.Context, acc users.Account) (users.User, error) {
	s.account = acc
	if s.err != nil {
		return users.User{}, s.err
	}
	return users.User{ID: 2, Name: acc.Name, Username: acc.Username, Email: acc.Email, Roles: acc.Roles}, nil
}

type stubRoles map[int64][]string

func (s stubRoles) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	return s[userID], nil
}

type stubQueue struct {
	sent []jobs.SendEmailPayload
}

func (s *stubQueue) EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	s.sent = append(s.sent, payload)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

type fixture struct {
	router   http.Handler
	repo     *stubRepo
	registry *stubRegistrar
	queue    *stubQueue
	tokens   *auth.Tokens
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "alice", Email: "alice@example.com", PasswordHash: string(hash)}}
	tokens, err := auth.NewTokens("secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	queue := &stubQueue{}
	registry := &stubRegistrar{}
	svc := auth.NewService(repo, registry, stubRoles{7: {"user", "pm"}}, tokens, auth.Options{
		Mail:       queue,
		Cooldown:   cache.NewCooldown(redisClient, "reset:", time.Minute),
		ResetTTL:   time.Hour,
		BaseURL:    "http://cms.test",
		BcryptCost: bcrypt.MinCost,
	})
	r := chi.NewRouter()
	auth.NewHandler(nil, svc).MountRoutes(r)
	return &fixture{router: r, repo: repo, registry: registry, queue: queue, tokens: tokens}
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestSigninIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/signin", `{"username":"alice","password":"password1"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Code, res.Body.String())
	}
	var body auth.SigninResult
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Auth || body.Type != "Bearer" {
		t.Fatalf("unexpected body %+v", body)
	}
	if strings.Join(body.Roles, ",") != "USER,PM" {
		t.Fatalf("unexpected roles %v", body.Roles)
	}
	id, err := f.tokens.Verify(body.AccessToken)
	if err != nil || id != 7 {
		t.Fatalf("verify token: id=%d err=%v", id, err)
	}
}

func TestSigninUnknownUser(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/signin", `{"username":"bob","password":"password1"}`)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.Code)
	}
}

func TestSigninInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/signin", `{"username":"alice","password":"wrongpass"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "accessToken") {
		t.Fatalf("no token expected on failure")
	}
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/signup", `{"name":"Bob Doe","username":"bob!","email":"nope","password":"password1","passwordConfirmation":"password2"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"username", "email", "passwordConfirmation"} {
		if _, ok := body.Errors[field]; !ok {
			t.Fatalf("expected error for %s in %v", field, body.Errors)
		}
	}
}

func TestSignupAssignsUserRole(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/signup", `{"name":"Bob Doe","username":"bobdoe","email":"bob@example.com","password":"password1","passwordConfirmation":"password1"}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", res.Code, res.Body.String())
	}
	if strings.Join(f.registry.account.Roles, ",") != "USER" {
		t.Fatalf("expected USER role, got %v", f.registry.account.Roles)
	}
}

func TestSignupDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.registry.err = shared.NewFieldError(shared.ErrDuplicate, map[string]string{"username": "is already taken"})
	res := f.post(t, "/signup", `{"name":"Bob Doe","username":"alice","email":"bob@example.com","password":"password1","passwordConfirmation":"password1"}`)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", res.Code)
	}
}

func TestForgotPasswordIsThrottledAndSilent(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		res := f.post(t, "/forgot-password", `{"email":"alice@example.com"}`)
		if res.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", res.Code)
		}
	}
	if len(f.queue.sent) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(f.queue.sent))
	}
	res := f.post(t, "/forgot-password", `{"email":"nobody@example.com"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("unknown address must not be revealed, got %d", res.Code)
	}
	if len(f.queue.sent) != 1 {
		t.Fatalf("no mail expected for unknown address")
	}
}

func TestForgotPasswordNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	if res := f.post(t, "/forgot-password", `{"email":"Alice@Example.COM"}`); res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if len(f.queue.sent) != 1 {
		t.Fatalf("expected reset mail for mixed-case address, got %d", len(f.queue.sent))
	}
	if f.queue.sent[0].To != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", f.queue.sent[0].To)
	}
	f.post(t, "/forgot-password", `{"email":"alice@example.com"}`)
	if len(f.queue.sent) != 1 {
		t.Fatalf("case variants must share one cooldown")
	}
}

func TestResetMailLinksToClientPage(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/forgot-password", `{"email":"alice@example.com"}`)
	if len(f.queue.sent) != 1 {
		t.Fatalf("expected reset mail")
	}
	body := f.queue.sent[0].Body
	token := extractToken(t, body)
	if !strings.Contains(body, "http://cms.test/reset-password?token="+token+"\n") {
		t.Fatalf("missing client link in %q", body)
	}
	if strings.Contains(body, "/api/auth/reset-password?") {
		t.Fatalf("mail must not link to the POST-only endpoint: %q", body)
	}
	if !strings.Contains(body, "POST") || !strings.Contains(body, "http://cms.test/api/auth/reset-password") {
		t.Fatalf("mail should describe the API call: %q", body)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	f := newFixture(t)
	if res := f.post(t, "/forgot-password", `{"email":"alice@example.com"}`); res.Code != http.StatusOK {
		t.Fatalf("forgot: %d", res.Code)
	}
	if len(f.queue.sent) != 1 {
		t.Fatalf("expected reset mail")
	}
	token := extractToken(t, f.queue.sent[0].Body)
	if f.repo.resetHash == token {
		t.Fatalf("reset token must be stored hashed")
	}

	res := f.post(t, "/reset-password", `{"token":"`+token+`","password":"brandnew1","passwordConfirmation":"brandnew1"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Code, res.Body.String())
	}
	if bcrypt.CompareHashAndPassword([]byte(f.repo.newHash), []byte("brandnew1")) != nil {
		t.Fatalf("password was not re-hashed")
	}

	res = f.post(t, "/reset-password", `{"token":"`+token+`","password":"brandnew1","passwordConfirmation":"brandnew1"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("reused token: expected status 400, got %d", res.Code)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/forgot-password", `{"email":"alice@example.com"}`)
	token := extractToken(t, f.queue.sent[0].Body)
	f.repo.resetUntil = time.Now().Add(-time.Minute)

	res := f.post(t, "/reset-password", `{"token":"`+token+`","password":"brandnew1","passwordConfirmation":"brandnew1"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
}

// extractToken finds the token query parameter in a reset mail body.
func extractToken(t *testing.T, body string) string {
	t.Helper()
	_, rest, ok := strings.Cut(body, "token=")
	if !ok {
		t.Fatalf("no token in mail body %q", body)
	}
	token, _, _ := strings.Cut(rest, "\n")
	return token
}
