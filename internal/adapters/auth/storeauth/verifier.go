// Package storeauth verifica tokens de sesión contra el propio record
// store remoto: si el store refresca la sesión, el token es válido y la
// respuesta trae el usuario autenticado.
package storeauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"farm-records/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("store auth client not configured")
	ErrUnauthorized  = errors.New("store auth unauthorized")
	ErrUpstream      = errors.New("store auth upstream error")
)

type Config struct {
	BaseURL string
	// Colección de usuarios del store (default "users").
	UsersCollection string
	Timeout         time.Duration
}

type Verifier struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(cfg Config) *Verifier {
	col := strings.TrimSpace(cfg.UsersCollection)
	if col == "" {
		col = "users"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Verifier{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		collection: col,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (v *Verifier) IsConfigured() bool {
	return v != nil && v.baseURL != ""
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if !v.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	url := fmt.Sprintf("%s/api/collections/%s/auth-refresh", v.baseURL, v.collection)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// ok
	case http.StatusUnauthorized, http.StatusForbidden:
		return auth.Claims{}, ErrUnauthorized
	default:
		return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	var out struct {
		Record struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"record"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return auth.Claims{}, fmt.Errorf("%w: invalid json: %v", ErrUpstream, err)
	}

	out.Record.ID = strings.TrimSpace(out.Record.ID)
	if out.Record.ID == "" {
		return auth.Claims{}, errors.New("store auth response missing record id")
	}

	return auth.Claims{
		UserID: out.Record.ID,
		Email:  strings.TrimSpace(out.Record.Email),
	}, nil
}
