package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
)

const defaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemoryService is the keyless fallback. Like Google it only sees the raw
// text, and it needs an explicit source language, so auto is sent as English.
type MyMemoryService struct {
	email   string
	baseURL string
	http    *resty.Client
}

func NewMyMemoryService(email, baseURL string) *MyMemoryService {
	if baseURL == "" {
		baseURL = defaultMyMemoryURL
	}
	return &MyMemoryService{
		email:   email,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.New(),
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, req prompt.Request) (string, error) {
	source := req.Source
	if source == language.Auto {
		source = language.English
	}

	params := map[string]string{
		"q":        req.Text,
		"langpair": fmt.Sprintf("%s|%s", source, req.Target),
	}
	if s.email != "" {
		params["de"] = s.email
	}

	var resp struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	r, err := s.http.R().SetContext(ctx).
		SetQueryParams(params).
		SetResult(&resp).
		Get(s.baseURL + "/get")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("API returned status %d: %s", r.StatusCode(), abbreviate(r.String(), 500))
	}
	if resp.ResponseStatus != 200 {
		return "", fmt.Errorf("API error: %s (%d)", resp.ResponseDetails, resp.ResponseStatus)
	}
	return resp.ResponseData.TranslatedText, nil
}

func (s *MyMemoryService) ExtractText(ctx context.Context, img Image) (string, error) {
	return "", ErrUnsupported
}
