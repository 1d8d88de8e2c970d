package assess

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicAssess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" || r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("missing auth headers: %v", r.Header)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("unexpected request shape: %+v", req)
			return
		}
		img := req.Messages[0].Content[0]
		if img.Type != "image" || img.Source.MediaType != "image/jpeg" {
			t.Errorf("unexpected image block: %+v", img)
		}
		if data, _ := base64.StdEncoding.DecodeString(img.Source.Data); string(data) != "jpegbytes" {
			t.Errorf("image data = %q", data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"  Estimated grade: LP  "}]}`))
	}))
	defer srv.Close()

	a, err := NewAnthropic(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	got, err := a.Assess(context.Background(), Request{Image: []byte("jpegbytes"), MediaType: "image/jpeg", Category: "mtg"})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got != "Estimated grade: LP" {
		t.Errorf("got %q", got)
	}
}

func TestAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	a, _ := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := a.Assess(context.Background(), Request{Image: []byte("x"), MediaType: "image/jpeg"})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "API returned status 503: Overloaded"; err.Error() != want {
		t.Errorf("got %q, want %q", err, want)
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := NewAnthropic(AnthropicConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}
