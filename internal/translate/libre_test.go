package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSplitChunksShortTextIsSingleChunk(t *testing.T) {
	chunks := splitChunks("hello world", 500)
	if len(chunks) != 1 || chunks[0] != "hello world" {
		t.Fatalf("got %v, want single chunk", chunks)
	}
}

func TestSplitChunksRespectsWordBoundaries(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 50)) // 249 chars
	chunks := splitChunks(text, 40)

	for i, c := range chunks {
		if len(c) > 40 {
			t.Errorf("chunk %d is %d chars, over the limit", i, len(c))
		}
	}
	if rejoined := strings.Join(chunks, " "); rejoined != text {
		t.Errorf("rejoined chunks differ from input:\n%q\n%q", rejoined, text)
	}
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["source"] != "en" || req["target"] != "hi" {
			t.Errorf("unexpected language pair: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "namaste " + req["q"]})
	}))
	defer srv.Close()

	got, err := New(srv.URL).Translate(context.Background(), "world", "en", "hi")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "namaste world" {
		t.Errorf("got %q, want %q", got, "namaste world")
	}
}

func TestTranslateRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "ok"})
	}))
	defer srv.Close()

	got, err := New(srv.URL).Translate(context.Background(), "hello", "en", "hi")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Errorf("got %q after %d calls, want %q after 2", got, calls, "ok")
	}
}

func TestTranslateEmptyText(t *testing.T) {
	if _, err := New("http://unused").Translate(context.Background(), "  ", "en", "hi"); err == nil {
		t.Fatal("expected error for empty text")
	}
}
