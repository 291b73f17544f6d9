package common

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Get(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		maxTries     uint
		wantBody     string
		wantStatus   int
		wantAttempts int32
	}{
		{
			name:         "success on first attempt",
			statuses:     []int{http.StatusOK},
			maxTries:     3,
			wantBody:     "ok",
			wantAttempts: 1,
		},
		{
			name:         "retries transient 503",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusOK},
			maxTries:     3,
			wantBody:     "ok",
			wantAttempts: 2,
		},
		{
			name:         "does not retry 404",
			statuses:     []int{http.StatusNotFound, http.StatusOK},
			maxTries:     3,
			wantStatus:   http.StatusNotFound,
			wantAttempts: 1,
		},
		{
			name:         "single try when retries disabled",
			statuses:     []int{http.StatusTooManyRequests, http.StatusOK},
			maxTries:     1,
			wantStatus:   http.StatusTooManyRequests,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := attempts.Add(1)
				status := tt.statuses[int(n)-1]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = io.WriteString(w, "ok")
				} else {
					_, _ = io.WriteString(w, "failure")
				}
			}))
			defer server.Close()

			client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, RateBurst: 10, MaxTries: tt.maxTries})
			body, err := client.Get(context.Background(), server.URL, nil)

			if tt.wantStatus != 0 {
				require.Error(t, err)
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
				assert.Equal(t, "failure", statusErr.Body)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
			assert.Equal(t, tt.wantAttempts, attempts.Load())
		})
	}
}

func TestHTTPClient_PostSendsBodyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		_, _ = w.Write(data)
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPClientConfig{MaxTries: 1})
	header := http.Header{}
	header.Set("User-Agent", "custom-agent")
	header.Set("Content-Type", "application/json")

	body, err := client.Post(context.Background(), server.URL, header, []byte(`{"videoId":"abc"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"videoId":"abc"}`, string(body))
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(HTTPClientConfig{})
	_, err := client.Get(ctx, server.URL, nil)
	assert.Error(t, err)
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, IsRetryableStatus(http.StatusTooManyRequests))
	assert.True(t, IsRetryableStatus(http.StatusBadGateway))
	assert.False(t, IsRetryableStatus(http.StatusForbidden))
	assert.False(t, IsRetryableStatus(http.StatusOK))
}
