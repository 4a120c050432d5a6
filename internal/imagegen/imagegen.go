// Package imagegen produces brand logos. Providers are plain blocking
// calls; LogoAdapter runs them on a worker pool and turns every failure
// into "no logo".
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/venturemind/venturemind-backend/internal/workerpool"
)

// ErrNotConfigured is returned by providers that have no credential.
var ErrNotConfigured = errors.New("image provider credential is not configured")

const styleSuffix = "Style: modern, minimalist, premium, vector logo, highly detailed, centered, white background."

type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the image as a self-describing data reference.
func (img Image) DataURI() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Synthesizer issues one blocking image-generation request.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (Image, error)
}

// StatusError reports a non-success provider response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

// ComposePrompt embeds brand name, tone and colors into the logo prompt.
func ComposePrompt(brandName, logoPrompt string, colors []string, tone string) string {
	var b strings.Builder
	if p := strings.TrimSpace(logoPrompt); p != "" {
		b.WriteString(strings.TrimSuffix(p, "."))
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "Brand name: %s. ", brandName)
	fmt.Fprintf(&b, "Tone: %s. ", tone)
	fmt.Fprintf(&b, "Colors: %s. ", strings.Join(colors, ", "))
	b.WriteString(styleSuffix)
	return b.String()
}

type LogoAdapter struct {
	synth Synthesizer
	pool  *workerpool.Pool
}

// NewLogoAdapter wires a provider to a pool. A nil synth yields an adapter
// that never produces a logo.
func NewLogoAdapter(synth Synthesizer, pool *workerpool.Pool) *LogoAdapter {
	if pool == nil {
		pool = workerpool.New(workerpool.DefaultSize)
	}
	return &LogoAdapter{synth: synth, pool: pool}
}

// SynthesizeLogo returns a data URI for the generated logo, or nil when no
// provider is configured, the provider rejects the call, or transport fails.
// It never returns an error and never blocks the caller's goroutine on the
// provider call itself; the wait is on a channel fed by the pool.
func (a *LogoAdapter) SynthesizeLogo(ctx context.Context, brandName, logoPrompt string, colors []string, tone string) *string {
	if a == nil || a.synth == nil {
		slog.Info("logo provider not configured, skipping", "task", "logo")
		return nil
	}
	prompt := ComposePrompt(brandName, logoPrompt, colors, tone)

	return workerpool.Do[*string](ctx, a.pool, nil, func(ctx context.Context) *string {
		slog.Info("calling image provider", "task", "logo", "brand", brandName)
		img, err := a.synth.Synthesize(ctx, prompt)
		if err != nil {
			slog.Warn("logo generation failed", "task", "logo", "error", err)
			return nil
		}
		if len(img.Data) == 0 {
			slog.Warn("logo generation returned no data", "task", "logo")
			return nil
		}
		uri := img.DataURI()
		return &uri
	})
}
