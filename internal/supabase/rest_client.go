// Package supabase is the remote data gateway: a typed client for the hosted
// PostgREST table API and the GoTrue auth API.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
)

const (
	restPrefix   = "/rest/v1"
	authPrefix   = "/auth/v1"
	tradesPath   = restPrefix + "/trades"
	profilesPath = restPrefix + "/user_profiles"
	profileRPC   = restPrefix + "/rpc/create_user_profile_simple"
)

var (
	// ErrNotConfigured means the backend URL or API key is missing.
	ErrNotConfigured = errors.New("backend not configured, set backend.url and backend.api_key")
	// ErrNotFound means no row matched the identifier (and owner, where given).
	ErrNotFound = errors.New("record not found")
	// ErrInvalidPage is returned for a page below 1 or a non-positive page size.
	ErrInvalidPage = errors.New("page must be >= 1 and page size > 0")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 or PostgREST's "no rows" code.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && (e.Status == http.StatusNotFound || e.Code == "PGRST116")
}

// TokenSource supplies the access token of the signed-in user.
// An empty token means requests are sent with the public API key only.
type TokenSource interface {
	AccessToken() string
}

// RestClient is a client for the hosted backend.
// It implements TradeTable, ProfileTable and AuthAPI.
type RestClient struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
	tokens  TokenSource
	now     func() time.Time
}

var (
	_ TradeTable   = (*RestClient)(nil)
	_ ProfileTable = (*RestClient)(nil)
	_ AuthAPI      = (*RestClient)(nil)
)

// NewRestClient creates a backend client, or returns ErrNotConfigured.
func NewRestClient(cfg *config.Backend, logger *zap.Logger) (*RestClient, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("apikey", cfg.ApiKey).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &RestClient{
		client:  client,
		apiKey:  cfg.ApiKey,
		logger:  logger.Named("supabase"),
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}, nil
}

// SetTokenSource attaches the session that authorizes row access.
// It must be called before the client is shared between goroutines.
func (c *RestClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *RestClient) bearer() string {
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			return token
		}
	}
	return c.apiKey
}

// newRequest prepares a request authorized as the current user.
func (c *RestClient) newRequest() *resty.Request {
	return c.client.R().SetAuthToken(c.bearer())
}

// doRequest waits for the rate limiter and executes the request once.
// Failed calls are not retried: callers own the fallback policy.
func (c *RestClient) doRequest(ctx context.Context, method, path string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+path))
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}
	return resp, nil
}

func parseAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode()}

	var body map[string]any
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Code = firstString(body, "error_code", "code", "error")
		apiErr.Message = firstString(body, "message", "msg", "error_description")
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(resp.String())
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

func firstString(body map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := body[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// parseContentRange reads the total from a PostgREST Content-Range header
// such as "0-9/25" or "*/0".
func parseContentRange(header string) (int64, error) {
	slash := strings.LastIndexByte(header, '/')
	if slash < 0 {
		return 0, fmt.Errorf("missing total in content range %q", header)
	}
	total, err := strconv.ParseInt(header[slash+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid total in content range %q: %w", header, err)
	}
	return total, nil
}

func eq(v string) string {
	return "eq." + v
}
