package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	"github.com/DonzTea/cms-crud-restful-api/internal/users"
	"github.com/DonzTea/cms-crud-restful-api/jobs"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, acc users.Account) (users.User, error)
}

// MailQueue enqueues outgoing mail.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Throttle limits repeated actions per key.
type Throttle interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// Options configures the password reset flow.
type Options struct {
	Mail       MailQueue
	Cooldown   Throttle
	ResetTTL   time.Duration
	BaseURL    string
	BcryptCost int
	Logger     *slog.Logger
}

// Service wraps authentication business rules.
type Service struct {
	repo      Repository
	registrar Registrar
	roles     rbac.RoleLookup
	tokens    *Tokens
	opts      Options
	now       func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, registrar Registrar, roles rbac.RoleLookup, tokens *Tokens, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	return &Service{repo: repo, registrar: registrar, roles: roles, tokens: tokens, opts: opts, now: time.Now}
}

// Signup registers a new account holding the USER role.
func (s *Service) Signup(ctx context.Context, acc users.Account) (users.User, error) {
	acc.Roles = []string{string(rbac.RoleUser)}
	return s.registrar.Register(ctx, acc)
}

// Signin validates username/password credentials and issues an access token.
func (s *Service) Signin(ctx context.Context, username, password string) (SigninResult, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return SigninResult{}, fmt.Errorf("user %q: %w", username, shared.ErrNotFound)
		}
		return SigninResult{}, err
	}
	if !users.CheckPassword(user.PasswordHash, password) {
		return SigninResult{}, shared.ErrInvalidCredentials
	}
	names, err := s.roles.RolesForUser(ctx, user.ID)
	if err != nil {
		return SigninResult{}, fmt.Errorf("auth: roles for %d: %w", user.ID, err)
	}
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return SigninResult{}, err
	}
	return SigninResult{
		Auth:        true,
		Type:        TokenType,
		AccessToken: token,
		ExpiresAt:   expires,
		Roles:       rbac.NewRoleSet(names...).Names(),
	}, nil
}

// ForgotPassword stores a fresh reset token for email and queues the reset
// mail. Unknown addresses and repeated requests inside the cooldown window
// succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.opts.Cooldown != nil {
		ok, err := s.opts.Cooldown.Acquire(ctx, email)
		if err != nil {
			s.opts.Logger.Warn("reset cooldown unavailable", slog.Any("error", err))
		} else if !ok {
			s.opts.Logger.Debug("reset request throttled", slog.String("email", email))
			return nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	token := newResetToken()
	if err := s.repo.SetResetToken(ctx, user.ID, hashToken(token), s.now().Add(s.opts.ResetTTL)); err != nil {
		return err
	}
	if s.opts.Mail == nil {
		return nil
	}
	if _, err := s.opts.Mail.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      user.Email,
		Subject: "Password reset",
		Body:    s.resetBody(token),
	}); err != nil {
		return fmt.Errorf("auth: enqueue reset mail: %w", err)
	}
	return nil
}

// ResetPassword replaces the password of the holder of token.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return shared.ErrResetTokenInvalid
	}
	user, err := s.repo.FindByResetToken(ctx, hashToken(token), s.now())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrResetTokenInvalid
		}
		return err
	}
	hash, err := users.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, hash)
}

func (s *Service) resetBody(token string) string {
	base := strings.TrimRight(s.opts.BaseURL, "/")
	link := base + "/reset-password?token=" + url.QueryEscape(token)
	return fmt.Sprintf("A password reset was requested for your account.\n\n"+
		"Open this link within %s to choose a new password:\n%s\n\n"+
		"API clients can POST {\"token\", \"password\", \"passwordConfirmation\"} as JSON to %s/api/auth/reset-password.\n\n"+
		"Ignore this mail if you did not ask for it.\n",
		s.opts.ResetTTL, link, base)
}

// newResetToken returns a random v4 UUID, hex encoded.
func newResetToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// hashToken is the stored form of a reset token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
