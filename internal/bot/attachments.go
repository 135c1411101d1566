package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// MaxScreenshotBytes bounds downloaded screenshots.
const MaxScreenshotBytes = 8 << 20

var (
	errScreenshotTooLarge = errors.New("screenshot too large")
	errNotAnImage         = errors.New("attachment is not an image")
)

// download fetches an attachment from Discord's CDN and sniffs its type.
func download(ctx context.Context, client *http.Client, a *discordgo.MessageAttachment) ([]byte, string, error) {
	if a.Size > MaxScreenshotBytes {
		return nil, "", errScreenshotTooLarge
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build attachment request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download attachment: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxScreenshotBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) > MaxScreenshotBytes {
		return nil, "", errScreenshotTooLarge
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", errNotAnImage
	}
	return data, mimeType, nil
}
