package pagespeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnalyzeURLParsesPerformanceScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/runPagespeed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("url") != "https://cornercoffee.example" {
			t.Fatalf("url %q", query.Get("url"))
		}
		if query.Get("category") != "performance" {
			t.Fatalf("category %q", query.Get("category"))
		}
		if query.Get("key") != "api-key-1" {
			t.Fatalf("key %q", query.Get("key"))
		}
		w.Write([]byte(`{"lighthouseResult":{"categories":{"performance":{"score":0.87}}}}`))
	}))
	defer server.Close()

	client := New("api-key-1", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	score, err := client.AnalyzeURL(context.Background(), "https://cornercoffee.example")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if score != 87 {
		t.Fatalf("score %d, want 87", score)
	}
}

func TestAnalyzeURLMissingScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lighthouseResult":{"categories":{}}}`))
	}))
	defer server.Close()

	client := New("", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.AnalyzeURL(context.Background(), "https://cornercoffee.example")
	if !errors.Is(err, ErrNoScore) {
		t.Fatalf("expected ErrNoScore, got %v", err)
	}
}

func TestAnalyzeURLAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`quota exceeded`))
	}))
	defer server.Close()

	client := New("", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.AnalyzeURL(context.Background(), "https://cornercoffee.example")
	if err == nil {
		t.Fatalf("expected error")
	}
}
