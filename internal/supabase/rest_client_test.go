package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := &RestClient{
		client:  resty.New().SetBaseURL(server.URL).SetHeader("apikey", "anon-key"),
		apiKey:  "anon-key",
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
		now:     func() time.Time { return fixedNow },
	}
	return rc, server
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewRestClient(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		rc, err := NewRestClient(&config.Backend{URL: "https://example.supabase.co"}, zap.NewNop())
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Nil(t, rc)
	})

	t.Run("Configured", func(t *testing.T) {
		cfg := &config.Backend{URL: "https://example.supabase.co/", ApiKey: "anon-key", RateLimit: 5, RateLimitBurst: 2}
		rc, err := NewRestClient(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "anon-key", rc.apiKey)
		assert.Equal(t, "https://example.supabase.co", rc.client.BaseURL)
		assert.Equal(t, rate.Limit(5), rc.limiter.Limit())
	})
}

func TestBearerToken(t *testing.T) {
	var got []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		got = append(got, r.Header.Get("Authorization"))
		w.Header().Set("Content-Range", "*/0")
		writeJSON(w, http.StatusOK, `[]`)
	})
	rc, server := setupTestServer(handler)
	defer server.Close()

	_, err := rc.ListTrades(context.Background(), "u-1", 1, 10)
	require.NoError(t, err)

	rc.SetTokenSource(staticToken("user-token"))
	_, err = rc.ListTrades(context.Background(), "u-1", 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer anon-key", "Bearer user-token"}, got)
}

func TestAPIError(t *testing.T) {
	testCases := []struct {
		name         string
		status       int
		body         string
		expectedCode string
		expectedMsg  string
		notFound     bool
	}{
		{name: "PostgREST", status: http.StatusBadRequest, body: `{"code":"22P02","message":"invalid input syntax"}`,
			expectedCode: "22P02", expectedMsg: "invalid input syntax"},
		{name: "GoTrue", status: http.StatusBadRequest, body: `{"error":"invalid_grant","error_description":"Invalid login credentials"}`,
			expectedCode: "invalid_grant", expectedMsg: "Invalid login credentials"},
		{name: "GoTrue numeric code", status: http.StatusUnprocessableEntity, body: `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`,
			expectedCode: "user_already_exists", expectedMsg: "User already registered"},
		{name: "No rows", status: http.StatusNotAcceptable, body: `{"code":"PGRST116","message":"no rows"}`,
			expectedCode: "PGRST116", expectedMsg: "no rows", notFound: true},
		{name: "Plain text", status: http.StatusBadGateway, body: `upstream down`,
			expectedMsg: "upstream down"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			rc, server := setupTestServer(handler)
			defer server.Close()

			_, err := rc.GetProfile(context.Background(), "u-1")

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.expectedCode, apiErr.Code)
			assert.Equal(t, tc.expectedMsg, apiErr.Message)
			assert.Equal(t, tc.notFound, errors.Is(err, ErrNotFound))
		})
	}
}

func TestNetworkError(t *testing.T) {
	rc, server := setupTestServer(http.NotFoundHandler())
	server.Close() // nothing listens any more

	_, err := rc.ListTrades(context.Background(), "u-1", 1, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list trades")
}

func TestCancelledContext(t *testing.T) {
	rc, server := setupTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	}))
	defer server.Close()
	rc.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	rc.limiter.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := rc.DeleteAllTrades(ctx, "u-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait failed")
}

func TestParseContentRange(t *testing.T) {
	testCases := []struct {
		header      string
		expected    int64
		expectError bool
	}{
		{header: "0-9/25", expected: 25},
		{header: "*/0", expected: 0},
		{header: "20-24/25", expected: 25},
		{header: "", expectError: true},
		{header: "0-9/*", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			total, err := parseContentRange(tc.header)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, total)
		})
	}
}
