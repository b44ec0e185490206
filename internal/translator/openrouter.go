package translator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/valpere/glosstran/internal/prompt"
)

const (
	DefaultOpenRouterModel = "google/gemini-2.5-flash"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
)

// OpenRouterService uses the OpenAI-compatible chat completions endpoint.
// Images are sent as data URLs in an image_url content part.
type OpenRouterService struct {
	apiKey  string
	baseURL string
	model   string
	http    *resty.Client
}

func NewOpenRouterService(apiKey, baseURL, model string) *OpenRouterService {
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    resty.New(),
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *OpenRouterService) Translate(ctx context.Context, req prompt.Request) (string, error) {
	messages := []map[string]any{
		{"role": "system", "content": req.SystemInstruction},
		{"role": "user", "content": req.Prompt},
	}
	return s.complete(ctx, messages)
}

func (s *OpenRouterService) ExtractText(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("image is empty")
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(img.Data))

	messages := []map[string]any{
		{"role": "user", "content": []map[string]any{
			{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
			{"type": "text", "text": prompt.OCRInstruction},
		}},
	}
	return s.complete(ctx, messages)
}

func (s *OpenRouterService) complete(ctx context.Context, messages []map[string]any) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("OpenRouter API key required")
	}

	body := map[string]any{
		"model":       s.model,
		"messages":    messages,
		"temperature": defaultTemperature,
		"max_tokens":  4096,
	}

	var resp chatCompletionResponse
	r, err := s.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("HTTP-Referer", "https://glosstran.local").
		SetHeader("X-Title", "glosstran").
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		Post(s.baseURL + "/chat/completions")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("API returned status %d: %s", r.StatusCode(), abbreviate(r.String(), 500))
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
