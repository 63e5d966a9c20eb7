package remote

import (
	"context"
	"encoding/json"
	"fmt"
)

// AuthClient talks to the account service.
type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResp struct {
	Message string `json:"message"`
}

// Login returns the service's message on a 2xx reply.
func (a *AuthClient) Login(ctx context.Context, username, password string) (string, error) {
	return a.post(ctx, "/login", loginReq{Username: username, Password: password})
}

func (a *AuthClient) Signup(ctx context.Context, username, email, password string) (string, error) {
	return a.post(ctx, "/signup", signupReq{Username: username, Email: email, Password: password})
}

func (a *AuthClient) post(ctx context.Context, path string, body interface{}) (string, error) {
	resp, err := a.c.PostJSON(ctx, path, body)
	if err != nil {
		return "", err
	}
	var m messageResp
	if err := json.Unmarshal(resp.Body, &m); err != nil {
		return "", fmt.Errorf("decode %s reply: %w", path, err)
	}
	return m.Message, nil
}

// GenerationClient talks to the document generation service.
type GenerationClient struct {
	c *Client
}

func NewGenerationClient(c *Client) *GenerationClient {
	return &GenerationClient{c: c}
}

// Generate posts payload and returns the raw document bytes and their
// content type as reported by the service.
func (g *GenerationClient) Generate(ctx context.Context, payload interface{}) ([]byte, string, error) {
	resp, err := g.c.PostJSON(ctx, "/generate", payload)
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.ContentType, nil
}
