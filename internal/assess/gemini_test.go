package assess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiAssess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Estimated grade: EX"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if g.Name() != "gemini:gemini-test" {
		t.Errorf("name = %q", g.Name())
	}

	got, err := g.Assess(context.Background(), Request{Image: []byte("jpegbytes"), MediaType: "image/jpeg", Category: "sports"})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got != "Estimated grade: EX" {
		t.Errorf("got %q", got)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), GeminiConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}
