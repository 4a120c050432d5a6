package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/venturemind/venturemind-backend/internal/config"
	"github.com/venturemind/venturemind-backend/internal/gemini"
	"github.com/venturemind/venturemind-backend/internal/imagegen"
	"github.com/venturemind/venturemind-backend/internal/venture"
	"github.com/venturemind/venturemind-backend/internal/workerpool"
)

// newOrchestrator builds the generation stack. The returned func releases
// provider clients.
func newOrchestrator(ctx context.Context, cfg *config.Config) (*venture.Orchestrator, func(), error) {
	gen, err := gemini.NewGeminiClient(ctx, gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	synth, err := newSynthesizer(ctx, cfg)
	if err != nil {
		gen.Close()
		return nil, nil, err
	}

	var logo venture.LogoSynthesizer
	if synth != nil {
		logo = imagegen.NewLogoAdapter(synth, workerpool.New(cfg.Image.Workers))
	}
	slog.Info("generation stack ready",
		"model", gen.Name(),
		"image_provider", cfg.Image.Provider,
		"image_workers", cfg.Image.Workers)

	return venture.New(gen, logo), gen.Close, nil
}

func newSynthesizer(ctx context.Context, cfg *config.Config) (imagegen.Synthesizer, error) {
	switch cfg.Image.Provider {
	case "stability":
		return imagegen.NewStabilityClient(imagegen.StabilityConfig{
			APIKey:   cfg.Image.StabilityAPIKey,
			Endpoint: cfg.Image.StabilityEndpoint,
			Timeout:  cfg.Image.Timeout,
		}), nil
	case "imagen":
		c, err := imagegen.NewImagenClient(ctx, imagegen.ImagenConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Image.ImagenModel,
			Timeout: cfg.Image.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Image.Provider)
	}
}
