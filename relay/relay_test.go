// ABOUTME: Tests for the Messages API relay
// ABOUTME: Uses httptest upstreams for success, rejection and failure paths
package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRelay(t *testing.T, upstream string) http.Handler {
	t.Helper()
	r, err := New(Config{APIKey: "sk-test", Upstream: upstream}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r.Handler()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, MessagesPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{}, nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestHealth(t *testing.T) {
	h := newRelay(t, "http://unused")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"CRM Demo Proxy Server"}`, rec.Body.String())
}

func TestForwardsVerbatimWithKey(t *testing.T) {
	var gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, AnthropicVersion, r.Header.Get("anthropic-version"))
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hi"}]}`))
	}))
	defer upstream.Close()

	body := `{"model":"m","max_tokens":10,"messages":[{"role":"user","content":"hello"}]}`
	rec := post(t, newRelay(t, upstream.URL), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, gotBody)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"hi"}]}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUpstreamErrorPassesThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer upstream.Close()

	rec := post(t, newRelay(t, upstream.URL), `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_error", decodeError(t, rec).Type)
}

func TestUnreachableUpstreamIsProxyError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	rec := post(t, newRelay(t, url), `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "proxy_error", decodeError(t, rec).Type)
}

func TestNonJSONUpstreamIsProxyError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer upstream.Close()

	rec := post(t, newRelay(t, upstream.URL), `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "proxy_error", detail.Type)
	assert.Contains(t, detail.Message, "non-JSON")
}

func TestRejectsBadRequests(t *testing.T) {
	h := newRelay(t, "http://unused")

	rec := post(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, MessagesPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, get.Code)

	preflight := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, MessagesPath, nil)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	h.ServeHTTP(preflight, req)
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Equal(t, "content-type", preflight.Header().Get("Access-Control-Allow-Headers"))
}
