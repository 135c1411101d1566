package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/memberguard/internal/config"
	"google.golang.org/genai"
)

// transcribePrompt asks for a verbatim transcription; interpretation happens in package ocr.
const transcribePrompt = `Transcribe all text visible in this screenshot exactly as written, ` +
	`line by line, in its original language. Do not translate, summarize, or add commentary.`

var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// contentGenerator is the subset of the genai client used by Recognizer.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Recognizer extracts text from images with a Gemini model.
type Recognizer struct {
	logger *slog.Logger
	models contentGenerator
	model  string
}

// NewRecognizer creates a Recognizer backed by the Gemini API.
func NewRecognizer(ctx context.Context, logger *slog.Logger, cfg config.OCRConfig) (*Recognizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newRecognizer(logger, client.Models, cfg.ModelName)
}

func newRecognizer(logger *slog.Logger, models contentGenerator, model string) (*Recognizer, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	return &Recognizer{
		logger: logger.With("component", "ocr_recognizer"),
		models: models,
		model:  model,
	}, nil
}

// Recognize returns the text found in image.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	mimeType = strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if !supportedImageTypes[mimeType] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, mimeType)
	}

	var temperature float32
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
		},
	}}

	start := time.Now()
	r.logger.DebugContext(ctx, "sending image to gemini",
		"model", r.model,
		"mime_type", mimeType,
		"image_bytes", len(image))

	resp, err := r.models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	r.logger.InfoContext(ctx, "image recognized",
		"duration_ms", time.Since(start).Milliseconds(),
		"text_length", len(text))
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrNoText
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		// only the first candidate with content is used
		if b.Len() > 0 {
			break
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
