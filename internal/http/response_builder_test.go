package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		JSON(map[string]string{"message": "ok"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Error("custom header not set")
	}
	if w.Body.String() != `{"message":"ok"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_Body(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Body("text/csv", []byte("a,b\n")).Write(w)

	if w.Header().Get("Content-Type") != "text/csv" || w.Body.String() != "a,b\n" {
		t.Errorf("unexpected response %q %q", w.Header().Get("Content-Type"), w.Body.String())
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(math.Inf(1)).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ResponseBuilder
		wantCode int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"unauthorized", UnauthorizedError("bad"), http.StatusUnauthorized},
		{"unprocessable", UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{"internal", InternalServerError("bad", "req_1"), http.StatusInternalServerError},
		{"too many", TooManyRequestsError("bad"), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] != "bad" {
				t.Errorf("error = %q, want %q", body["error"], "bad")
			}
		})
	}

	w := httptest.NewRecorder()
	UnauthorizedError("x").Write(w)
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("401 must carry WWW-Authenticate")
	}

	w = httptest.NewRecorder()
	InternalServerError("x", "").Write(w)
	if strings.Contains(w.Body.String(), "request_id") {
		t.Errorf("empty request ID should be omitted, got %s", w.Body.String())
	}
}
