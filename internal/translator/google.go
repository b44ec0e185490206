package translator

import (
	"context"
	"errors"
	"fmt"

	translate "cloud.google.com/go/translate"
	"google.golang.org/api/option"

	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
)

// GoogleService is the Cloud Translation backend. It translates the raw text
// only: style and glossary instructions have no equivalent there, and it
// cannot read images.
type GoogleService struct {
	credentials string
}

func NewGoogleService(credentials string) *GoogleService {
	return &GoogleService{credentials: credentials}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, req prompt.Request) (string, error) {
	if !req.Target.IsTarget() {
		return "", fmt.Errorf("invalid target language %q", req.Target)
	}

	var opts []option.ClientOption
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	var topts *translate.Options
	if req.Source != language.Auto {
		topts = &translate.Options{Source: req.Source.Tag(), Format: translate.Text}
	} else {
		topts = &translate.Options{Format: translate.Text}
	}

	translations, err := client.Translate(ctx, []string{req.Text}, req.Target.Tag(), topts)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", errors.New("no translation returned")
	}
	return translations[0].Text, nil
}

func (s *GoogleService) ExtractText(ctx context.Context, img Image) (string, error) {
	return "", ErrUnsupported
}
