package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPostsCredentials(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"message":"Welcome back, jane!"}`))
	}))
	defer srv.Close()

	a := NewAuthClient(NewClient(srv.URL+"/", time.Second))
	msg, err := a.Login(context.Background(), "jane", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, jane!", msg)
	assert.Equal(t, map[string]string{"username": "jane", "password": "pw"}, got)
}

func TestSignupNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Please provide username, email, and password."}`))
	}))
	defer srv.Close()

	a := NewAuthClient(NewClient(srv.URL, time.Second))
	_, err := a.Signup(context.Background(), "jane", "", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestMalformedReplyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := NewAuthClient(NewClient(srv.URL, time.Second)).Login(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestGenerateReturnsBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"Full Name":"Jane"}`, string(b))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x50, 0x4b, 0x03, 0x04})
	}))
	defer srv.Close()

	g := NewGenerationClient(NewClient(srv.URL, time.Second))
	body, ct, err := g.Generate(context.Background(), map[string]string{"Full Name": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x50, 0x4b, 0x03, 0x04}, body)
	assert.Equal(t, "application/octet-stream", ct)
}

func TestCancelledContextIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAuthClient(NewClient(srv.URL, time.Second)).Login(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnreachableHostIsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := NewGenerationClient(NewClient(url, time.Second)).Generate(context.Background(), struct{}{})
	assert.Error(t, err)
}

func TestOversizedReplyIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(bytes.Repeat([]byte("x"), maxBody+1024))
	}))
	defer srv.Close()

	body, _, err := NewGenerationClient(NewClient(srv.URL, 10*time.Second)).Generate(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Nil(t, body)
}

func TestReplyAtLimitIsKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), maxBody))
	}))
	defer srv.Close()

	body, _, err := NewGenerationClient(NewClient(srv.URL, 10*time.Second)).Generate(context.Background(), map[string]string{})
	require.NoError(t, err)
	assert.Len(t, body, maxBody)
}
