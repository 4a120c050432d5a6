// Package gemini implements structgen.Invoker on top of the Gemini API,
// using JSON response mode with a response schema so the model is
// constrained to emit the requested shape.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/venturemind/venturemind-backend/internal/structgen"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	// Timeout bounds a single call; zero means no deadline beyond ctx.
	Timeout time.Duration
}

type GeminiClient struct {
	client *genai.Client
	cfg    Config
}

// NewGeminiClient builds a client. An empty API key is not an error here:
// the client is created without a connection and every Invoke fails with
// structgen.ErrMissingCredentials.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 4096
	}

	g := &GeminiClient{cfg: cfg}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GeminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.cfg.Model }

// Invoke sends system messages as the system instruction and user messages
// as content parts, and returns the model's JSON text.
func (g *GeminiClient) Invoke(ctx context.Context, messages []structgen.Message, schemaName string, schema *structgen.Schema) (json.RawMessage, error) {
	if g.client == nil {
		return nil, structgen.ErrMissingCredentials
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	// GenerativeModel carries per-call config, so each call gets its own.
	model := g.client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(g.cfg.Temperature)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(g.cfg.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(schema)

	var system []genai.Part
	var parts []genai.Part
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role == structgen.RoleSystem {
			system = append(system, genai.Text(m.Content))
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(parts) == 0 {
		return nil, structgen.ErrEmptyPrompt
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", schemaName, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("no content generated for %s", schemaName)
	}
	return json.RawMessage(text), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func toGenaiSchema(s *structgen.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Nullable:    s.Nullable,
	}
	switch s.Type {
	case structgen.TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, name := range s.PropertyNames() {
			out.Properties[name] = toGenaiSchema(s.Properties[name])
		}
		out.Required = append([]string(nil), s.Required...)
	case structgen.TypeArray:
		out.Type = genai.TypeArray
		out.Items = toGenaiSchema(s.Items)
	default:
		out.Type = genai.TypeString
	}
	return out
}
