package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/infra/cache"
	"github.com/boddenberg/card-advisor-go/internal/infra/client"
	"github.com/boddenberg/card-advisor-go/internal/infra/observability"
	"github.com/boddenberg/card-advisor-go/internal/infra/resilience"
	"github.com/boddenberg/card-advisor-go/internal/port"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var resCfg = resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 4}

func newClient(t *testing.T, url string, c port.Cache[string]) *client.StatementClient {
	t.Helper()
	return client.NewStatementClient(
		&http.Client{Timeout: time.Second},
		url,
		resilience.NewCircuitBreaker("statement-test", zap.NewNop()),
		resCfg,
		c,
		observability.NewMetrics(),
	)
}

func TestStatementClient_Success(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.Query().Get("as_of")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"card_name":"SBI SimplyCLICK","as_of":"2025-07-25","balance":1500.5}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil)
	v, err := c.CurrentUtilization(context.Background(), "SBI SimplyCLICK", time.Date(2025, 7, 25, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("1500.5")), "got %s", v)
	assert.Equal(t, "/v1/cards/SBI%20SimplyCLICK/utilization", gotPath)
	assert.Equal(t, "2025-07-25", gotQuery)
}

func TestStatementClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"balance":"42"}`))
	}))
	defer srv.Close()

	v, err := newClient(t, srv.URL, nil).CurrentUtilization(context.Background(), "HDFC Regalia Gold", time.Now())
	require.NoError(t, err, "expected success after retries")
	assert.True(t, v.Equal(decimal.NewFromInt(42)), "got %s", v)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStatementClient_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, nil).CurrentUtilization(context.Background(), "Ghost", time.Now())

	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStatementClient_UsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"balance":"900"}`))
	}))
	defer srv.Close()

	c := cache.New[string](time.Minute)
	defer c.Close()
	sc := newClient(t, srv.URL, c)

	day := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		v, err := sc.CurrentUtilization(context.Background(), "SBI SimplyCLICK", day)
		require.NoError(t, err)
		assert.True(t, v.Equal(decimal.NewFromInt(900)), "got %s", v)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "upstream calls")
}

func TestStatementClient_RejectsNegativeBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":-1}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, nil).CurrentUtilization(context.Background(), "SBI SimplyCLICK", time.Now())
	assert.Error(t, err, "negative balance")
}

func TestStatementClient_MissingStatementsDoNotOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/cards/Ghost/utilization" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"balance":"250"}`))
	}))
	defer srv.Close()

	sc := newClient(t, srv.URL, nil)
	for i := 0; i < 8; i++ {
		_, err := sc.CurrentUtilization(context.Background(), "Ghost", time.Now())
		var notFound *domain.ErrNotFound
		require.ErrorAs(t, err, &notFound)
	}

	v, err := sc.CurrentUtilization(context.Background(), "HDFC Regalia Gold", time.Now())
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(250)), "got %s", v)
}

func TestStatementClient_CancelledLookupsDoNotOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":"10"}`))
	}))
	defer srv.Close()

	sc := newClient(t, srv.URL, nil)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 8; i++ {
		_, err := sc.CurrentUtilization(cancelled, "SBI SimplyCLICK", time.Now())
		require.ErrorIs(t, err, context.Canceled)
	}

	_, err := sc.CurrentUtilization(context.Background(), "SBI SimplyCLICK", time.Now())
	assert.NoError(t, err)
}
