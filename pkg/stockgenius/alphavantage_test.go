package stockgenius

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlphaVantageServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAlphaVantageFetchOverview(t *testing.T) {
	server := newAlphaVantageServer(t, `{
		"Symbol": "KO",
		"Name": "Coca-Cola Company",
		"PERatio": "24.9",
		"MarketCapitalization": "290000000000",
		"DividendYield": "None"
	}`, http.StatusOK)

	f := NewAlphaVantageFetcher(" test-key ", WithAlphaVantageBaseURL(server.URL+"/"), WithAlphaVantageLogger(discardLogger()))
	assert.Equal(t, "alphavantage", f.Name())

	rec, err := f.FetchFundamentals(context.Background(), " ko ")
	require.NoError(t, err)
	assert.Equal(t, "KO", rec.Ticker)
	require.NotNil(t, rec.CompanyName)
	assert.Equal(t, "Coca-Cola Company", *rec.CompanyName)
	require.NotNil(t, rec.PERatio)
	assert.Equal(t, 24.9, *rec.PERatio)
	require.NotNil(t, rec.MarketCap)
	assert.Equal(t, 2.9e11, *rec.MarketCap)
	assert.Nil(t, rec.DividendYield)
}

func TestAlphaVantageErrorPayloads(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantErr error
		wantMsg string
	}{
		{name: "empty object", body: `{}`, status: http.StatusOK, wantErr: ErrSymbolNotFound},
		{name: "error message", body: `{"Error Message": "Invalid API call"}`, status: http.StatusOK, wantErr: ErrSymbolNotFound},
		{name: "rate note", body: `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`, status: http.StatusOK, wantErr: ErrRateLimited},
		{name: "information", body: `{"Information": "daily limit reached"}`, status: http.StatusOK, wantErr: ErrRateLimited},
		{name: "http status", body: `oops`, status: http.StatusServiceUnavailable, wantMsg: "http status 503"},
		{name: "bad json", body: `not json`, status: http.StatusOK, wantMsg: "decode response"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := newAlphaVantageServer(t, tc.body, tc.status)
			f := NewAlphaVantageFetcher("test-key", WithAlphaVantageBaseURL(server.URL), WithAlphaVantageLogger(discardLogger()))
			_, err := f.FetchFundamentals(context.Background(), "KO")
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestAlphaVantageEmptyTicker(t *testing.T) {
	f := NewAlphaVantageFetcher("k")
	_, err := f.FetchFundamentals(context.Background(), "  ")
	assert.Equal(t, ErrCodeInvalidInput, CodeOf(err))
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestAlphaVantageInjectedClient(t *testing.T) {
	var gotURL string
	client := doerFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       httpBody(`{"Symbol":"BRK-B","Name":"Berkshire","PERatio":"-","MarketCapitalization":"1000000000000","DividendYield":"0"}`),
		}, nil
	})
	f := NewAlphaVantageFetcher("k", WithAlphaVantageHTTPClient(client), WithAlphaVantageTimeout(time.Second))
	rec, err := f.FetchFundamentals(context.Background(), "brk-b")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotURL, defaultAlphaVantageBaseURL+"/query?"))
	assert.Contains(t, gotURL, "symbol=BRK-B")
	assert.Nil(t, rec.PERatio)
	require.NotNil(t, rec.DividendYield)
	assert.Equal(t, 0.0, *rec.DividendYield)
}

func TestAlphaVantageThroughCoreClassifiesFailures(t *testing.T) {
	server := newAlphaVantageServer(t, `{"Note":"slow down"}`, http.StatusOK)
	f := NewAlphaVantageFetcher("test-key", WithAlphaVantageBaseURL(server.URL), WithAlphaVantageLogger(discardLogger()))
	core := newTestCore(t, Options{Market: f})

	records, err := core.Enrich(context.Background(), NewTickerSet("KO"))
	require.NoError(t, err)
	assert.Equal(t, ErrCodeUpstreamUnavailable, records[0].ErrorCode)
	assert.Contains(t, records[0].Error, "rate limited")
}

func TestParseFloatPtr(t *testing.T) {
	for _, missing := range []string{"", "None", "-", "null", "N/A", " none ", "abc"} {
		assert.Nil(t, parseFloatPtr(missing), missing)
	}
	v := parseFloatPtr(" 0.0123 ")
	require.NotNil(t, v)
	assert.Equal(t, 0.0123, *v)
}

func TestStaticFetcher(t *testing.T) {
	f := NewStaticFetcher(FundamentalsRecord{Ticker: "abc", PERatio: ptr(1.5)})
	rec, err := f.FetchFundamentals(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, "ABC", rec.Ticker)

	_, err = f.FetchFundamentals(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSymbolNotFound)

	f.Fail("abc", ErrRateLimited)
	_, err = f.FetchFundamentals(context.Background(), "ABC")
	assert.ErrorIs(t, err, ErrRateLimited)

	f.Set(FundamentalsRecord{Ticker: "ABC"})
	_, err = f.FetchFundamentals(context.Background(), "ABC")
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.FetchFundamentals(ctx, "ABC")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleFundamentalsCoverSelectableTickers(t *testing.T) {
	f := NewStaticFetcher(SampleFundamentals()...)
	set := Select("Low", "growth value dividend", "")
	for _, tier := range RiskTiers {
		set.Add(tier.DefaultTickers()...)
	}
	for _, ticker := range set.Sorted() {
		_, err := f.FetchFundamentals(context.Background(), ticker)
		assert.NoError(t, err, ticker)
	}
}
