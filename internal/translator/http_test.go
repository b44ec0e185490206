package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
)

func testRequest(t *testing.T) prompt.Request {
	t.Helper()
	req, err := prompt.Build("Hello", language.English, language.Korean, language.Natural, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return req
}

func TestOpenRouterService_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		messages := body["messages"].([]any)
		if len(messages) != 2 {
			t.Errorf("expected system and user messages, got %d", len(messages))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "안녕하세요"}}},
		})
	}))
	defer server.Close()

	svc := NewOpenRouterService("test-key", server.URL, "")

	got, err := svc.Translate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "안녕하세요" {
		t.Errorf("expected '안녕하세요', got %q", got)
	}
}

func TestOpenRouterService_NoAPIKey(t *testing.T) {
	svc := NewOpenRouterService("", "http://127.0.0.1:1", "")

	if _, err := svc.Translate(context.Background(), testRequest(t)); err == nil {
		t.Error("expected error when no API key")
	}
}

func TestOpenRouterService_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	svc := NewOpenRouterService("test-key", server.URL, "")

	_, err := svc.Translate(context.Background(), testRequest(t))
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestOpenRouterService_ExtractText_SendsDataURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 1 || len(body.Messages[0].Content) != 2 {
			t.Errorf("unexpected message shape: %+v", body)
		} else {
			url := body.Messages[0].Content[0]["image_url"].(map[string]any)["url"].(string)
			if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
				t.Errorf("unexpected data url %q", url)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "SALE"}}},
		})
	}))
	defer server.Close()

	svc := NewOpenRouterService("test-key", server.URL, "")

	got, err := svc.ExtractText(context.Background(), Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SALE" {
		t.Errorf("got %q", got)
	}
}

func TestOllamaService_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if p, _ := req["prompt"].(string); !strings.Contains(p, "Source language: English.") {
			t.Errorf("expected built prompt, got %q", p)
		}
		if s, _ := req["system"].(string); s == "" {
			t.Error("expected system instruction")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": "안녕하세요"})
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "gemma3:12b")

	got, err := svc.Translate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "안녕하세요" {
		t.Errorf("expected '안녕하세요', got %q", got)
	}
}

func TestOllamaService_ExtractText_SendsImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		images, _ := req["images"].([]any)
		if len(images) != 1 {
			t.Errorf("expected one image, got %v", req["images"])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": ""})
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "")

	got, err := svc.ExtractText(context.Background(), Image{Data: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected no text, got %q", got)
	}
}

func TestOllamaService_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "")

	if _, err := svc.Translate(context.Background(), testRequest(t)); err == nil {
		t.Error("expected error for non-OK status")
	}
}

func TestOllamaService_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := NewOllamaService(server.URL, "").IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGeminiService_RequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiService(context.Background(), "", ""); err == nil {
		t.Error("expected error without API key")
	}
}

func TestMyMemoryService_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("langpair"); got != "en|ko" {
			t.Errorf("unexpected langpair %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":"안녕하세요","match":1},"responseStatus":200}`))
	}))
	defer server.Close()

	svc := NewMyMemoryService("", server.URL)

	got, err := svc.Translate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "안녕하세요" {
		t.Errorf("got %q", got)
	}
}

func TestMyMemoryService_QuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":""},"responseStatus":429,"responseDetails":"QUOTA EXCEEDED"}`))
	}))
	defer server.Close()

	svc := NewMyMemoryService("", server.URL)

	_, err := svc.Translate(context.Background(), testRequest(t))
	if err == nil || !strings.Contains(err.Error(), "QUOTA") {
		t.Errorf("expected quota error, got %v", err)
	}
}
