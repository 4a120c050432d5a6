package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const DefaultStabilityEndpoint = "https://api.stability.ai/v2beta/stable-image/generate/core"

type StabilityConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// StabilityClient calls the Stability stable-image API and asks for PNG.
type StabilityClient struct {
	http     *http.Client
	apiKey   string
	endpoint string
}

func NewStabilityClient(cfg StabilityConfig) *StabilityClient {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultStabilityEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &StabilityClient{
		http:     &http.Client{Timeout: timeout},
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: endpoint,
	}
}

func (s *StabilityClient) Synthesize(ctx context.Context, prompt string) (Image, error) {
	if s.apiKey == "" {
		return Image{}, ErrNotConfigured
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("prompt", prompt); err != nil {
		return Image{}, fmt.Errorf("encode prompt: %w", err)
	}
	if err := form.WriteField("output_format", "png"); err != nil {
		return Image{}, fmt.Errorf("encode output format: %w", err)
	}
	if err := form.Close(); err != nil {
		return Image{}, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return Image{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("stability request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, fmt.Errorf("read stability response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Image{}, &StatusError{Provider: "stability", Status: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	return Image{Data: data, MIMEType: imageMIME(resp.Header.Get("Content-Type"))}, nil
}

func imageMIME(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return "image/png"
	}
	return mt
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
