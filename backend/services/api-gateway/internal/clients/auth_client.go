package clients

import (
	"context"
	"net/http"
	"strconv"
)

// Headers set on upstream requests.
const (
	UserIDHeader    = "X-User-ID"
	RequestIDHeader = "X-Request-ID"
)

// AuthClient proxies auth-service endpoints.
type AuthClient struct {
	base *BaseClient
}

// NewAuthClient returns client.
func NewAuthClient(baseURL string, httpClient HTTPDoer) *AuthClient {
	return &AuthClient{base: NewBaseClient("auth-service", baseURL, httpClient)}
}

// Signup forwards signup payload.
func (c *AuthClient) Signup(ctx context.Context, body []byte, headers http.Header) (*Response, error) {
	return c.base.Do(ctx, http.MethodPost, "/auth/signup", body, headers)
}

// Login forwards login payload.
func (c *AuthClient) Login(ctx context.Context, body []byte, headers http.Header) (*Response, error) {
	return c.base.Do(ctx, http.MethodPost, "/auth/login", body, headers)
}

// Me fetches the caller's profile.
func (c *AuthClient) Me(ctx context.Context, userID int64, headers http.Header) (*Response, error) {
	h := headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set(UserIDHeader, strconv.FormatInt(userID, 10))
	return c.base.Do(ctx, http.MethodGet, "/auth/me", nil, h)
}
