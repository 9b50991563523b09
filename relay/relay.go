// ABOUTME: Relay that forwards Messages API requests with a server-held key
// ABOUTME: Adds CORS, a health check and proxy_error responses on failure
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultUpstream  = "https://api.anthropic.com/v1/messages"
	AnthropicVersion = "2023-06-01"
	MessagesPath     = "/api/messages"

	maxBodyBytes = 10 << 20
)

var ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY environment variable not set")

type Config struct {
	APIKey   string
	Upstream string
	Timeout  time.Duration
}

type Relay struct {
	apiKey   string
	upstream string
	client   *http.Client
	logger   *zap.Logger
}

// New fails without an API key; the relay never starts half-configured.
func New(cfg Config, logger *zap.Logger) (*Relay, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Upstream == "" {
		cfg.Upstream = DefaultUpstream
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		apiKey:   cfg.APIKey,
		upstream: cfg.Upstream,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger.Named("relay"),
	}, nil
}

// Handler returns the standalone relay: health check at / and the
// messages endpoint.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", r.handleHealth)
	r.Mount(mux)
	return mux
}

// Mount registers the messages endpoint on mux.
func (r *Relay) Mount(mux *http.ServeMux) {
	mux.Handle(MessagesPath, cors(http.HandlerFunc(r.handleMessages)))
}

func (r *Relay) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "CRM Demo Proxy Server"})
}

func (r *Relay) handleMessages(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "invalid_request_error", "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "failed to read request body")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "request body must be JSON")
		return
	}

	r.logger.Info("proxying request to Anthropic API")
	start := time.Now()

	upReq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, r.upstream, bytes.NewReader(body))
	if err != nil {
		r.proxyError(w, err)
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("x-api-key", r.apiKey)
	upReq.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := r.client.Do(upReq)
	if err != nil {
		r.proxyError(w, err)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		r.proxyError(w, fmt.Errorf("failed to read upstream response: %w", err))
		return
	}
	if !json.Valid(data) {
		r.proxyError(w, fmt.Errorf("upstream returned non-JSON body (status %d)", resp.StatusCode))
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("Anthropic API error", zap.Int("status", resp.StatusCode), zap.ByteString("body", data))
	} else {
		r.logger.Info("request successful", zap.Duration("latency", time.Since(start)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(data)
}

func (r *Relay) proxyError(w http.ResponseWriter, err error) {
	r.logger.Error("proxy error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "proxy_error", err.Error())
}

type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, errorEnvelope{Error: errorDetail{Type: typ, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cors allows every origin and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		if reqHeaders := req.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		} else {
			h.Set("Access-Control-Allow-Headers", "Content-Type, x-api-key, anthropic-version")
		}
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
