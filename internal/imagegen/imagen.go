package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const DefaultImagenModel = "imagen-3.0-generate-002"

type ImagenConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ImagenClient generates logos with Imagen through the Gemini API.
type ImagenClient struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

// NewImagenClient returns a client that reports ErrNotConfigured on every
// call when no API key is set.
func NewImagenClient(ctx context.Context, cfg ImagenConfig) (*ImagenClient, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultImagenModel
	}
	c := &ImagenClient{model: model, timeout: cfg.Timeout}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return c, nil
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init imagen client: %w", err)
	}
	c.cli = cli
	return c, nil
}

func (c *ImagenClient) Synthesize(ctx context.Context, prompt string) (Image, error) {
	if c.cli == nil {
		return Image{}, ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.cli.Models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return Image{}, fmt.Errorf("imagen request: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return Image{}, fmt.Errorf("imagen returned no image")
	}
	img := resp.GeneratedImages[0].Image
	return Image{Data: img.ImageBytes, MIMEType: imageMIME(img.MIMEType)}, nil
}
