package structgen

import "github.com/venturemind/venturemind-backend/internal/models"

var brandSchema = Object("Brand identity", map[string]*Schema{
	"name":        String("Primary brand name"),
	"alt_name":    String("Alternate brand name"),
	"tagline":     String("Short tagline"),
	"colors":      Array("Brand color palette as hex codes or color names", String("Color token"), 1),
	"brand_tone":  String("Tone of voice descriptor"),
	"logo_prompt": String("Prompt describing the logo for an image model"),
})

var financialsSchema = Object("Financial snapshot", map[string]*Schema{
	"total_cost":        String("Estimated total cost to launch"),
	"projected_revenue": String("Projected first-year revenue"),
	"roi":               String("Expected return on investment"),
	"burn_rate":         String("Monthly burn rate"),
	"break_even_month":  String("Month in which the business breaks even"),
	"runway":            String("Runway given the estimated funding"),
})

var pitchSchema = Object("Pitch", map[string]*Schema{
	"elevator_pitch": String("Thirty second elevator pitch"),
	"slides": Object("Five-slide outline", map[string]*Schema{
		"problem":   String("Problem slide"),
		"solution":  String("Solution slide"),
		"market":    String("Market slide"),
		"model":     String("Business model slide"),
		"brand_ask": String("The ask"),
	}),
})

var scenarioSchema = Object("Consumer-centric real world scenario", map[string]*Schema{
	"user_story":        String("Who the user is"),
	"pain_point_solved": String("What is painful for them today"),
	"day_in_life":       String("How the product changes their day"),
})

// StartupPackSchema is the shape of the mandatory first call. The scenario
// and logo are not requested; they come from enrichment.
var StartupPackSchema = Definition[models.StartupPack]{
	Name: "StartupPack",
	Schema: Object("Consumer-centric startup pack", map[string]*Schema{
		"startup_summary": String("Summary of the startup"),
		"competitors":     Array("Names of existing competitors", String("Competitor name"), 1),
		"brand":           brandSchema,
		"financials":      financialsSchema,
		"pitch":           pitchSchema,
	}),
}

var RealWorldScenarioSchema = Definition[models.RealWorldScenario]{
	Name:   "RealWorldScenario",
	Schema: scenarioSchema,
}

var CompetitorMatrixSchema = Definition[models.CompetitorMatrixPack]{
	Name: "CompetitorMatrixPack",
	Schema: Object("Competitor matrix", map[string]*Schema{
		"rows": Array("Competitor rows", Object("Competitor", map[string]*Schema{
			"name":            String("Competitor name"),
			"type":            String("Category, e.g. direct or indirect"),
			"strengths":       String("Key strengths"),
			"weaknesses":      String("Key weaknesses"),
			"differentiation": String("How the new startup differs"),
			"pricing_hint":    String("Pricing indication"),
		}), 0),
	}),
}
