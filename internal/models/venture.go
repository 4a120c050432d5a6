package models

// Brand is the identity block of a startup pack. LogoURL is filled in after
// the enrichment join and stays nil when no logo could be produced.
type Brand struct {
	Name       string   `json:"name" yaml:"name"`
	AltName    string   `json:"alt_name" yaml:"alt_name"`
	Tagline    string   `json:"tagline" yaml:"tagline"`
	Colors     []string `json:"colors" yaml:"colors"`
	BrandTone  string   `json:"brand_tone" yaml:"brand_tone"`
	LogoPrompt string   `json:"logo_prompt" yaml:"logo_prompt"`
	LogoURL    *string  `json:"logo_url" yaml:"logo_url,omitempty"`
}

type Financials struct {
	TotalCost        string `json:"total_cost" yaml:"total_cost"`
	ProjectedRevenue string `json:"projected_revenue" yaml:"projected_revenue"`
	ROI              string `json:"roi" yaml:"roi"`
	BurnRate         string `json:"burn_rate" yaml:"burn_rate"`
	BreakEvenMonth   string `json:"break_even_month" yaml:"break_even_month"`
	Runway           string `json:"runway" yaml:"runway"`
}

type PitchSlides struct {
	Problem  string `json:"problem" yaml:"problem"`
	Solution string `json:"solution" yaml:"solution"`
	Market   string `json:"market" yaml:"market"`
	Model    string `json:"model" yaml:"model"`
	BrandAsk string `json:"brand_ask" yaml:"brand_ask"`
}

type Pitch struct {
	ElevatorPitch string      `json:"elevator_pitch" yaml:"elevator_pitch"`
	Slides        PitchSlides `json:"slides" yaml:"slides"`
}

type RealWorldScenario struct {
	UserStory       string `json:"user_story" yaml:"user_story"`
	PainPointSolved string `json:"pain_point_solved" yaml:"pain_point_solved"`
	DayInLife       string `json:"day_in_life" yaml:"day_in_life"`
}

// StartupPack is the primary synthesized entity. Everything except
// RealWorldScenario and Brand.LogoURL comes from the mandatory first call.
type StartupPack struct {
	StartupSummary    string             `json:"startup_summary" yaml:"startup_summary"`
	Competitors       []string           `json:"competitors" yaml:"competitors"`
	Brand             Brand              `json:"brand" yaml:"brand"`
	Financials        Financials         `json:"financials" yaml:"financials"`
	RealWorldScenario *RealWorldScenario `json:"real_world_scenario" yaml:"real_world_scenario,omitempty"`
	Pitch             Pitch              `json:"pitch" yaml:"pitch"`
}

// CompetitorRow is one line of the competitor matrix. It is unrelated to
// StartupPack.Competitors, which is a plain list of names.
type CompetitorRow struct {
	Name            string `json:"name" yaml:"name"`
	Type            string `json:"type" yaml:"type"`
	Strengths       string `json:"strengths" yaml:"strengths"`
	Weaknesses      string `json:"weaknesses" yaml:"weaknesses"`
	Differentiation string `json:"differentiation" yaml:"differentiation"`
	PricingHint     string `json:"pricing_hint" yaml:"pricing_hint"`
}

type CompetitorMatrixPack struct {
	Rows []CompetitorRow `json:"rows" yaml:"rows"`
}

// CompositeResult is what the orchestrator hands back to its caller.
type CompositeResult struct {
	ReplyMarkdown    string          `json:"reply_markdown" yaml:"reply_markdown"`
	StartupPack      StartupPack     `json:"startup_pack" yaml:"startup_pack"`
	CompetitorMatrix []CompetitorRow `json:"competitor_matrix" yaml:"competitor_matrix"`
}
