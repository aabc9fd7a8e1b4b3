package platform

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// tokenSafetyMargin is subtracted from expires_in so a token is never used
// right at the edge of its lifetime.
const tokenSafetyMargin = 60 * time.Second

// defaultTokenTTL applies when the token response omits expires_in.
const defaultTokenTTL = 3600 * time.Second

// Authenticator performs the client-credentials exchange against the
// platform OAuth endpoint and caches the token per instance. The mutex is
// held across the refresh, so concurrent callers block and reuse the one
// freshly fetched token instead of each issuing a network call.
type Authenticator struct {
	logger       *slog.Logger
	client       *http.Client
	oauthURL     string
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewAuthenticator creates an authenticator for the given OAuth endpoint.
func NewAuthenticator(log *slog.Logger, client *http.Client, oauthURL, clientID, clientSecret string) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Authenticator{
		logger:       log.With(slog.String("component", "platform_auth")),
		client:       client,
		oauthURL:     oauthURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// GetToken returns the cached token when unexpired, otherwise refreshes it.
// At most one refresh request is outstanding per instance.
func (a *Authenticator) GetToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expiresAt) {
		return a.token, nil
	}

	token, expiresIn, err := a.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	a.token = token
	a.expiresAt = a.now().Add(expiresIn - tokenSafetyMargin)
	a.logger.Debug("platform token refreshed", slog.Duration("expires_in", expiresIn))
	return token, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (a *Authenticator) fetchToken(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.oauthURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	req.Header.Set("Authorization", "Basic "+a.encodedCredentials())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("%w: token endpoint returned %d", ErrAuthenticationFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrMalformedTokenResponse, err)
	}
	if strings.TrimSpace(parsed.AccessToken) == "" {
		return "", 0, fmt.Errorf("%w: access_token missing", ErrMalformedTokenResponse)
	}

	expiresIn := defaultTokenTTL
	if parsed.ExpiresIn > 0 {
		expiresIn = time.Duration(parsed.ExpiresIn) * time.Second
	}
	return parsed.AccessToken, expiresIn, nil
}

func (a *Authenticator) encodedCredentials() string {
	return base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
}
