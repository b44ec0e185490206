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
	DefaultOllamaModel = "gemma3:12b"
	defaultOllamaURL   = "http://localhost:11434"
)

// OllamaService drives a self-hosted model through /api/generate. The model
// must be multimodal for ExtractText to work.
type OllamaService struct {
	baseURL string
	model   string
	http    *resty.Client
}

func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaService{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    resty.New(),
	}
}

func (s *OllamaService) Name() string {
	return "ollama"
}

func (s *OllamaService) Translate(ctx context.Context, req prompt.Request) (string, error) {
	body := map[string]any{
		"model":   s.model,
		"system":  req.SystemInstruction,
		"prompt":  req.Prompt,
		"stream":  false,
		"options": map[string]any{"temperature": defaultTemperature},
	}
	return s.generate(ctx, body)
}

func (s *OllamaService) ExtractText(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("image is empty")
	}
	body := map[string]any{
		"model":  s.model,
		"prompt": prompt.OCRInstruction,
		"images": []string{base64.StdEncoding.EncodeToString(img.Data)},
		"stream": false,
	}
	return s.generate(ctx, body)
}

func (s *OllamaService) generate(ctx context.Context, body map[string]any) (string, error) {
	var resp struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	r, err := s.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		Post(s.baseURL + "/api/generate")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("API returned status %d: %s", r.StatusCode(), abbreviate(r.String(), 500))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("API error: %s", resp.Error)
	}
	return resp.Response, nil
}

// IsAvailable checks that the Ollama daemon answers.
func (s *OllamaService) IsAvailable(ctx context.Context) error {
	r, err := s.http.R().SetContext(ctx).Get(s.baseURL + "/api/tags")
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	if r.IsError() {
		return fmt.Errorf("Ollama returned status %d", r.StatusCode())
	}
	return nil
}
