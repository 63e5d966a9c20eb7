package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextstep-cv/internal/store"
	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
)

type fakeAuth struct {
	err      error
	calls    int
	lastUser string
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (string, error) {
	f.calls++
	f.lastUser = username
	if f.err != nil {
		return "", f.err
	}
	return "Welcome back, " + username + "!", nil
}

func (f *fakeAuth) Signup(_ context.Context, username, _, _ string) (string, error) {
	f.calls++
	f.lastUser = username
	if f.err != nil {
		return "", f.err
	}
	return "Signup successful!", nil
}

func newSession(auth Authenticator) (*Session, *store.Memory) {
	kv := store.NewMemory()
	return NewManager(auth, logger.Nop(), metrics.New()).For(kv), kv
}

func TestLoginStoresUsername(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	s, kv := newSession(auth)

	assert.False(t, s.IsAuthenticated(ctx))

	res, err := s.Login(ctx, " jane ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jane", res.Username)
	assert.Equal(t, "Welcome back, jane!", res.Message)
	assert.Equal(t, "jane", auth.lastUser)

	v, ok, _ := kv.Get(ctx, store.KeyUsername)
	assert.True(t, ok)
	assert.Equal(t, "jane", v)
	assert.True(t, s.IsAuthenticated(ctx))
}

func TestLoginFailureIsGeneric(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(&fakeAuth{err: errors.New("dial tcp: connection refused")})

	_, err := s.Login(ctx, "jane", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	assert.Equal(t, LoginFailed, apperror.UserMessage(err, ""))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestLoginRejectsEmptyInputWithoutRemoteCall(t *testing.T) {
	auth := &fakeAuth{}
	s, _ := newSession(auth)

	_, err := s.Login(context.Background(), "", "pw")
	require.Error(t, err)
	assert.Equal(t, LoginFailed, apperror.UserMessage(err, ""))
	assert.Zero(t, auth.calls)
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	s, _ := newSession(auth)

	_, err := s.Signup(ctx, "jane", "not-an-email", "pw")
	require.Error(t, err)
	assert.Equal(t, SignupFailed, apperror.UserMessage(err, ""))
	assert.Zero(t, auth.calls)

	res, err := s.Signup(ctx, "jane", "jane@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Signup successful!", res.Message)
	assert.True(t, s.IsAuthenticated(ctx))
}

func TestSignupFailure(t *testing.T) {
	s, _ := newSession(&fakeAuth{err: errors.New("500")})
	_, err := s.Signup(context.Background(), "jane", "jane@x.com", "pw")
	assert.Equal(t, SignupFailed, apperror.UserMessage(err, ""))
}

func TestAbandonedRequestDoesNotLogIn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := newSession(&fakeAuth{})

	_, err := s.Login(ctx, "jane", "pw")
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated(context.Background()))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(&fakeAuth{})
	_, err := s.Login(ctx, "jane", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated(ctx))

	// logging out twice is harmless
	require.NoError(t, s.Logout(ctx))
}
