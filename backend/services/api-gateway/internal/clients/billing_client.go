package clients

import (
	"context"
	"net/http"
	"strconv"
)

// BillingClient proxies requests to billing-service.
type BillingClient struct {
	base *BaseClient
}

// NewBillingClient returns client instance.
func NewBillingClient(baseURL string, httpClient HTTPDoer) *BillingClient {
	return &BillingClient{base: NewBaseClient("billing-service", baseURL, httpClient)}
}

// Forward sends a request on behalf of userID. pathAndQuery is relative to the
// billing service root.
func (c *BillingClient) Forward(ctx context.Context, method, pathAndQuery string, body []byte, userID int64, requestID string) (*Response, error) {
	headers := http.Header{}
	headers.Set(UserIDHeader, strconv.FormatInt(userID, 10))
	if requestID != "" {
		headers.Set(RequestIDHeader, requestID)
	}
	return c.base.Do(ctx, method, pathAndQuery, body, headers)
}
