package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/valpere/glosstran/internal/prompt"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiService talks to the Gemini API through the official Go SDK.
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) Name() string {
	return "gemini"
}

func (s *GeminiService) Translate(ctx context.Context, req prompt.Request) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(defaultTemperature)
	if req.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (s *GeminiService) ExtractText(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("image is empty")
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	model := s.client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: img.Data},
		genai.Text(prompt.OCRInstruction),
	)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
