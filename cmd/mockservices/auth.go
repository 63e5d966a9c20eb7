package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nextstep-cv/pkg/logger"
)

var (
	errUserExists = errors.New("user already exists")
	errBadLogin   = errors.New("invalid credentials")
)

type account struct {
	email string
	hash  []byte
}

// users is an in-memory account table.
type users struct {
	mu   sync.RWMutex
	byID map[string]account
}

func newUsers() *users {
	return &users{byID: map[string]account{}}
}

func (u *users) signup(username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[username]; ok {
		return errUserExists
	}
	u.byID[username] = account{email: email, hash: hash}
	return nil
}

func (u *users) login(username, password string) error {
	u.mu.RLock()
	acc, ok := u.byID[username]
	u.mu.RUnlock()
	if !ok {
		return errBadLogin
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return errBadLogin
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func newAuthMux(u *users, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Email == "" || c.Password == "" {
			writeMessage(w, http.StatusBadRequest, "Please provide username, email, and password.")
			return
		}
		switch err := u.signup(strings.TrimSpace(c.Username), c.Email, c.Password); {
		case errors.Is(err, errUserExists):
			writeMessage(w, http.StatusConflict, "User already exists!")
		case err != nil:
			log.Error("signup", err)
			writeMessage(w, http.StatusInternalServerError, "Server error during signup.")
		default:
			log.Info("signup", zap.String("username", c.Username))
			writeMessage(w, http.StatusOK, "Signup successful!")
		}
	})

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Password == "" {
			writeMessage(w, http.StatusBadRequest, "Please provide username and password.")
			return
		}
		if err := u.login(c.Username, c.Password); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeMessage(w, http.StatusOK, "Welcome back, "+c.Username+"!")
	})

	return mux
}
