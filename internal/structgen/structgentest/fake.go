// Package structgentest provides a deterministic structgen.Invoker for
// offline runs and tests.
package structgentest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/venturemind/venturemind-backend/internal/structgen"
)

const StartupPackJSON = `{
  "startup_summary": "LeafLoop ships a curated box of rare houseplants every month.",
  "competitors": ["Horti", "The Sill", "Bloomscape"],
  "brand": {
    "name": "LeafLoop",
    "alt_name": "RareRoots",
    "tagline": "Rare plants, delivered.",
    "colors": ["#2F5D50", "#F4EBD9", "#C97B63"],
    "brand_tone": "warm and curious",
    "logo_prompt": "A single monstera leaf forming a loop"
  },
  "financials": {
    "total_cost": "$120k",
    "projected_revenue": "$450k in year one",
    "roi": "2.1x over three years",
    "burn_rate": "$15k/month",
    "break_even_month": "Month 14",
    "runway": "8 months"
  },
  "pitch": {
    "elevator_pitch": "LeafLoop brings collector-grade plants to every doorstep.",
    "slides": {
      "problem": "Rare plants are hard to find and ship badly.",
      "solution": "A climate-controlled subscription box.",
      "market": "12M US plant collectors.",
      "model": "$49/month subscription.",
      "brand_ask": "Raising $500k seed."
    }
  }
}`

const ScenarioJSON = `{
  "user_story": "Maya, 29, collects variegated aroids in a small apartment.",
  "pain_point_solved": "She spends hours hunting sellers and half her plants arrive damaged.",
  "day_in_life": "A box arrives on the first Saturday; she unpacks a healthy plant and a care card."
}`

const CompetitorMatrixJSON = `{
  "rows": [
    {"name": "Horti", "type": "direct", "strengths": "Brand", "weaknesses": "Common plants", "differentiation": "Rarity", "pricing_hint": "$35/mo"},
    {"name": "The Sill", "type": "indirect", "strengths": "Retail reach", "weaknesses": "No subscription focus", "differentiation": "Curation", "pricing_hint": "$40-$200"},
    {"name": "Etsy sellers", "type": "indirect", "strengths": "Selection", "weaknesses": "Shipping quality", "differentiation": "Guaranteed arrival", "pricing_hint": "varies"}
  ]
}`

// Invoker answers each schema with a canned response or an error. Responses
// and errors are keyed by schema name.
type Invoker struct {
	mu        sync.Mutex
	Responses map[string]string
	Errors    map[string]error
	calls     map[string]int
	prompts   map[string][]structgen.Message
}

// NewInvoker returns an Invoker answering all three schemas successfully.
func NewInvoker() *Invoker {
	return &Invoker{
		Responses: map[string]string{
			structgen.StartupPackSchema.Name:       StartupPackJSON,
			structgen.RealWorldScenarioSchema.Name: ScenarioJSON,
			structgen.CompetitorMatrixSchema.Name:  CompetitorMatrixJSON,
		},
		Errors: map[string]error{},
	}
}

// Fail makes every call for schemaName return err.
func (f *Invoker) Fail(schemaName string, err error) *Invoker {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[schemaName] = err
	return f
}

func (f *Invoker) Invoke(ctx context.Context, messages []structgen.Message, schemaName string, _ *structgen.Schema) (json.RawMessage, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
		f.prompts = map[string][]structgen.Message{}
	}
	f.calls[schemaName]++
	f.prompts[schemaName] = messages
	err := f.Errors[schemaName]
	resp, ok := f.Responses[schemaName]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no canned response for %s", schemaName)
	}
	return json.RawMessage(resp), nil
}

// Calls reports how many times schemaName was requested.
func (f *Invoker) Calls(schemaName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[schemaName]
}

// TotalCalls reports the number of requests across all schemas.
func (f *Invoker) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// LastMessages returns the messages of the most recent call for schemaName.
func (f *Invoker) LastMessages(schemaName string) []structgen.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[schemaName]
}
