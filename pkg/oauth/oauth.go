// Package oauth provides Reddit application-only OAuth 2.0 for redditview.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrMissingCredentials = errors.New("client id and client secret are required")
)

// expirySkew renews tokens slightly before upstream expires them.
const expirySkew = time.Minute

type Config struct {
	ClientID     string
	ClientSecret string // #nosec G117 - OAuth config field, not an exposed secret
	TokenURL     string
	UserAgent    string
}

func RedditAppConfig(clientID, clientSecret string) Config {
	return Config{ // #nosec G101 -- OAuth URLs are public API endpoints, not hardcoded credentials
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     "https://www.reddit.com/api/v1/access_token",
		UserAgent:    "redditview/1.0",
	}
}

func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.TokenURL == "" {
		return errors.New("token URL is required")
	}
	return nil
}

type Token struct {
	AccessToken string    `json:"access_token"` // #nosec G117 - JSON field for OAuth token, not an exposed secret
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	Scope       string    `json:"scope,omitempty"`
	ObtainedAt  time.Time `json:"obtained_at"`
}

// ExpiresAt is the zero time for tokens without a lifetime.
func (t *Token) ExpiresAt() time.Time {
	if t.ExpiresIn <= 0 || t.ObtainedAt.IsZero() {
		return time.Time{}
	}
	return t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Valid reports whether the token can still be sent at now.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	exp := t.ExpiresAt()
	return exp.IsZero() || now.Before(exp.Add(-expirySkew))
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Flow struct {
	config     Config
	httpClient HTTPClient
	now        func() time.Time
}

type FlowOption func(*Flow)

func WithHTTPClient(client HTTPClient) FlowOption {
	return func(f *Flow) { f.httpClient = client }
}

func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

func NewFlow(config Config, opts ...FlowOption) *Flow {
	f := &Flow{config: config, httpClient: http.DefaultClient, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ClientCredentials requests an application-only token.
func (f *Flow) ClientCredentials(ctx context.Context) (*Token, error) {
	if err := f.config.Validate(); err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(f.config.ClientID, f.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, errors.New("token request rejected: check REDDITVIEW_CLIENT_ID and REDDITVIEW_CLIENT_SECRET")
	default:
		return nil, fmt.Errorf("token request failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Token
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("token request failed: %s", payload.Error)
	}
	if payload.AccessToken == "" {
		return nil, errors.New("token response carried no access token")
	}

	token := payload.Token
	token.ObtainedAt = f.now().UTC()
	return &token, nil
}

type TokenStorage struct {
	dir string
}

func NewTokenStorage(dir string) *TokenStorage {
	return &TokenStorage{dir: dir}
}

func (s *TokenStorage) Save(name string, token *Token) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	return os.WriteFile(s.path(name), data, 0600)
}

func (s *TokenStorage) Load(name string) (*Token, error) {
	data, err := os.ReadFile(s.path(name)) // #nosec G304 -- name is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// Path returns the file a token called name is stored in.
func (s *TokenStorage) Path(name string) string {
	return s.path(name)
}

func (s *TokenStorage) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name)+"_token.json")
}

// TokenName is the storage name of the Reddit application token.
const TokenName = "reddit"

// TokenSource hands out a valid access token, reusing the stored one until
// it expires. With a nil flow it only serves the stored token.
type TokenSource struct {
	flow    *Flow
	storage *TokenStorage
	now     func() time.Time

	mu    sync.Mutex
	token *Token
}

func NewTokenSource(flow *Flow, storage *TokenStorage) *TokenSource {
	now := time.Now
	if flow != nil {
		now = flow.now
	}
	return &TokenSource{flow: flow, storage: storage, now: now}
}

// AccessToken implements the Reddit client's token source.
func (s *TokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil && s.storage != nil {
		if stored, err := s.storage.Load(TokenName); err == nil {
			s.token = stored
		}
	}
	if s.token.Valid(s.now()) {
		return s.token.AccessToken, nil
	}

	if s.flow == nil {
		return "", fmt.Errorf("stored Reddit token is missing or expired (run 'redditview auth'): %w", ErrTokenNotFound)
	}
	token, err := s.flow.ClientCredentials(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	if s.storage != nil {
		// The cache only saves a round trip on the next run.
		_ = s.storage.Save(TokenName, token)
	}
	return token.AccessToken, nil
}
