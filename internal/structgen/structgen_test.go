package structgen_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemind/venturemind-backend/internal/structgen"
	"github.com/venturemind/venturemind-backend/internal/structgen/structgentest"
)

func msgs(text string) []structgen.Message {
	return []structgen.Message{structgen.HumanMessage(text)}
}

func TestGenerate_StartupPack(t *testing.T) {
	inv := structgentest.NewInvoker()

	pack, err := structgen.Generate(context.Background(), inv, "core", msgs("User idea: plants"), structgen.StartupPackSchema)
	require.NoError(t, err)

	assert.Equal(t, "LeafLoop", pack.Brand.Name)
	assert.Len(t, pack.Competitors, 3)
	assert.Equal(t, []string{"#2F5D50", "#F4EBD9", "#C97B63"}, pack.Brand.Colors)
	assert.Equal(t, "Raising $500k seed.", pack.Pitch.Slides.BrandAsk)
	assert.Nil(t, pack.Brand.LogoURL)
	assert.Nil(t, pack.RealWorldScenario)
	assert.Equal(t, 1, inv.Calls("StartupPack"))
}

func TestGenerate_UpstreamErrorIsGenerationError(t *testing.T) {
	upstream := errors.New("503 from provider")
	inv := structgentest.NewInvoker().Fail("RealWorldScenario", upstream)

	_, err := structgen.Generate(context.Background(), inv, "scenario", msgs("idea"), structgen.RealWorldScenarioSchema)
	require.Error(t, err)

	var genErr *structgen.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "scenario", genErr.Task)
	assert.Equal(t, "RealWorldScenario", genErr.Schema)
	assert.ErrorIs(t, err, upstream)
}

func TestGenerate_NilInvokerMeansMissingCredentials(t *testing.T) {
	_, err := structgen.Generate(context.Background(), nil, "core", msgs("idea"), structgen.StartupPackSchema)
	assert.ErrorIs(t, err, structgen.ErrMissingCredentials)
}

func TestGenerate_EmptyPromptNeverReachesProvider(t *testing.T) {
	inv := structgentest.NewInvoker()

	_, err := structgen.Generate(context.Background(), inv, "core", msgs("   "), structgen.StartupPackSchema)
	assert.ErrorIs(t, err, structgen.ErrEmptyPrompt)
	assert.Zero(t, inv.TotalCalls())
}

func TestGenerate_NonConformantOutput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `the model rambled`},
		{"missing property", `{"user_story": "a", "pain_point_solved": "b"}`},
		{"blank string", `{"user_story": "a", "pain_point_solved": "  ", "day_in_life": "c"}`},
		{"wrong type", `{"user_story": 4, "pain_point_solved": "b", "day_in_life": "c"}`},
		{"null value", `{"user_story": null, "pain_point_solved": "b", "day_in_life": "c"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := structgentest.NewInvoker()
			inv.Responses["RealWorldScenario"] = tt.body

			_, err := structgen.Generate(context.Background(), inv, "scenario", msgs("idea"), structgen.RealWorldScenarioSchema)
			assert.ErrorIs(t, err, structgen.ErrNonConformant)
		})
	}
}

func TestGenerate_FencedOutputIsAccepted(t *testing.T) {
	tests := []struct {
		name string
		wrap func(string) string
	}{
		{"tag on own line", func(j string) string { return "```json\n" + j + "\n```" }},
		{"tag inline", func(j string) string { return "```json " + j + "```" }},
		{"tag touching payload", func(j string) string { return "```json" + j + "```" }},
		{"no tag", func(j string) string { return "```\n" + j + "\n```" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := structgentest.NewInvoker()
			inv.Responses["RealWorldScenario"] = tt.wrap(structgentest.ScenarioJSON)

			s, err := structgen.Generate(context.Background(), inv, "scenario", msgs("idea"), structgen.RealWorldScenarioSchema)
			require.NoError(t, err)
			assert.Contains(t, s.UserStory, "Maya")
		})
	}
}

func TestGenerate_EmptyCompetitorMatrixIsValid(t *testing.T) {
	inv := structgentest.NewInvoker()
	inv.Responses["CompetitorMatrixPack"] = `{"rows": []}`

	m, err := structgen.Generate(context.Background(), inv, "competitors", msgs("idea"), structgen.CompetitorMatrixSchema)
	require.NoError(t, err)
	assert.Empty(t, m.Rows)
}

func TestGenerate_StartupPackRequiresCompetitors(t *testing.T) {
	inv := structgentest.NewInvoker()
	inv.Responses["StartupPack"] = `{"startup_summary": "x", "competitors": []}`

	_, err := structgen.Generate(context.Background(), inv, "core", msgs("idea"), structgen.StartupPackSchema)
	assert.ErrorIs(t, err, structgen.ErrNonConformant)
}
