package session

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"nextstep-cv/internal/store"
	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
)

const (
	LoginFailed  = "Login failed"
	SignupFailed = "Signup failed"
)

// Authenticator is the remote account service.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, email, password string) (string, error)
}

type loginInput struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required"`
}

type signupInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Manager holds what every client's session shares.
type Manager struct {
	auth     Authenticator
	validate *validator.Validate
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewManager(auth Authenticator, log logger.Logger, m *metrics.Metrics) *Manager {
	return &Manager{auth: auth, validate: validator.New(), log: log, metrics: m}
}

// For binds the manager to one client's store.
func (m *Manager) For(s store.Store) *Session {
	return &Session{m: m, store: s}
}

// Session is the authentication state of one client.
type Session struct {
	m     *Manager
	store store.Store
}

// Result is what a successful login or signup yields.
type Result struct {
	Username string
	Message  string
}

func (s *Session) Login(ctx context.Context, username, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	if err := s.m.validate.Struct(loginInput{Username: username, Password: password}); err != nil {
		s.m.metrics.Auth("login", metrics.ResultRejected)
		return nil, apperror.NewAuth(LoginFailed, err)
	}
	msg, err := s.m.auth.Login(ctx, username, password)
	if err != nil {
		s.m.log.Warn("login rejected", zap.String("username", username), zap.Error(err))
		s.m.metrics.Auth("login", metrics.ResultFailure)
		return nil, apperror.NewAuth(LoginFailed, err)
	}
	return s.establish(ctx, "login", username, msg, LoginFailed)
}

func (s *Session) Signup(ctx context.Context, username, email, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := s.m.validate.Struct(signupInput{Username: username, Email: email, Password: password}); err != nil {
		s.m.metrics.Auth("signup", metrics.ResultRejected)
		return nil, apperror.NewAuth(SignupFailed, err)
	}
	msg, err := s.m.auth.Signup(ctx, username, email, password)
	if err != nil {
		s.m.log.Warn("signup rejected", zap.String("username", username), zap.Error(err))
		s.m.metrics.Auth("signup", metrics.ResultFailure)
		return nil, apperror.NewAuth(SignupFailed, err)
	}
	return s.establish(ctx, "signup", username, msg, SignupFailed)
}

func (s *Session) establish(ctx context.Context, op, username, msg, failMsg string) (*Result, error) {
	// a reply that lands after the request was abandoned must not log the
	// client in behind its back
	if err := ctx.Err(); err != nil {
		s.m.metrics.Auth(op, metrics.ResultFailure)
		return nil, apperror.NewAuth(failMsg, err)
	}
	if err := s.store.Set(ctx, store.KeyUsername, username); err != nil {
		s.m.metrics.Auth(op, metrics.ResultFailure)
		return nil, apperror.NewAuth(failMsg, err)
	}
	s.m.log.Info("session established", zap.String("op", op), zap.String("username", username))
	s.m.metrics.Auth(op, metrics.ResultSuccess)
	return &Result{Username: username, Message: msg}, nil
}

// Logout always clears local state; there is no remote call.
func (s *Session) Logout(ctx context.Context) error {
	return s.store.Delete(ctx, store.KeyUsername)
}

func (s *Session) Username(ctx context.Context) (string, bool) {
	v, ok, err := s.store.Get(ctx, store.KeyUsername)
	if err != nil {
		s.m.log.Error("read session", err)
		return "", false
	}
	return v, ok && v != ""
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Username(ctx)
	return ok
}
