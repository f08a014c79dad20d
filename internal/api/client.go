package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome is the uniform result of every backend call. Callers never see
// a transport error or a raw status code path: failure is always
// Success=false plus a user-facing Message, success always carries the
// parsed payload in Data (nil when the body was not valid JSON).
type Outcome struct {
	Success bool
	Status  int
	Message string
	Data    json.RawMessage
}

// Err converts a failed outcome into an error; a success outcome yields nil.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	return &Error{Status: o.Status, Message: o.Message}
}

// Error is the failure half of the gateway's outcome, usable anywhere a
// plain error is expected.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client talks to the ordering backend. All endpoints live under the
// site's /api prefix.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New builds a client for the given site base URL, e.g.
// "http://localhost:8000".
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		base: strings.TrimSuffix(baseURL, "/") + "/api",
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) Outcome {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Outcome{Message: "invalid request body"}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return Outcome{Message: "invalid request"}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend unreachable",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return Outcome{Message: "request timed out"}
		}
		return Outcome{Message: "cannot reach server"}
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	var payload json.RawMessage
	if len(bytes.TrimSpace(raw)) > 0 && json.Valid(raw) {
		payload = raw
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := errorMessage(payload, res.StatusCode)
		c.log.Warn("backend rejected request",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", res.StatusCode), zap.String("message", msg))
		return Outcome{Status: res.StatusCode, Message: msg}
	}
	return Outcome{Success: true, Status: res.StatusCode, Data: payload}
}

// errorMessage extracts the conventional error field from a failure
// payload: FastAPI reports under "detail", fiber-style backends under
// "message". Anything else falls back to the status code.
func errorMessage(payload json.RawMessage, status int) string {
	if payload != nil {
		var body map[string]any
		if json.Unmarshal(payload, &body) == nil {
			if s, ok := body["detail"].(string); ok && s != "" {
				return s
			}
			if s, ok := body["message"].(string); ok && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
