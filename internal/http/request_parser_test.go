package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/signup/", strings.NewReader(`{"username": " alice ", "password": "secret1", "age": 30}`))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("username"); got != "alice" {
		t.Errorf("Get(username) = %q, want %q", got, "alice")
	}
	if got := parser.Get("age"); got != "30" {
		t.Errorf("Get(age) = %q, want %q", got, "30")
	}
	if got := parser.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/login/", strings.NewReader("username=bob%01by&password=hunter22"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("username"); got != "bobby" {
		t.Errorf("Get(username) = %q, want control characters stripped", got)
	}
	if got := parser.Get("password"); got != "hunter22" {
		t.Errorf("Get(password) = %q", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	parser := NewRequestBodyParser(req)

	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.Get("anything") != "" {
		t.Error("expected empty value for empty body")
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
	req.Header.Set("Content-Type", "application/json")
	parser := NewRequestBodyParser(req)

	if err := parser.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	// Parse is idempotent and keeps returning the first error.
	if err := parser.Parse(); err == nil {
		t.Fatal("expected cached error")
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a="+strings.Repeat("x", maxBodyBytes)))
	parser := NewRequestBodyParser(req)

	if err := parser.Parse(); err != errBodyTooLarge {
		t.Fatalf("Parse() error = %v, want errBodyTooLarge", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Bearer   ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
