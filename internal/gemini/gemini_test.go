package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemind/venturemind-backend/internal/structgen"
)

func TestInvokeWithoutKeyFailsWithoutNetwork(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), Config{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Invoke(context.Background(), []structgen.Message{structgen.HumanMessage("idea")}, "StartupPack", structgen.StartupPackSchema.Schema)
	assert.ErrorIs(t, err, structgen.ErrMissingCredentials)
	assert.Equal(t, "Gemini:"+DefaultModel, c.Name())
}

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(structgen.StartupPackSchema.Schema)

	require.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"startup_summary", "competitors", "brand", "financials", "pitch"}, s.Required)

	competitors := s.Properties["competitors"]
	require.NotNil(t, competitors)
	assert.Equal(t, genai.TypeArray, competitors.Type)
	assert.Equal(t, genai.TypeString, competitors.Items.Type)

	slides := s.Properties["pitch"].Properties["slides"]
	require.NotNil(t, slides)
	assert.Len(t, slides.Properties, 5)
	assert.Contains(t, slides.Required, "brand_ask")
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`"b"}`)}},
	}}}
	assert.Equal(t, `{"a":"b"}`, responseText(resp))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))
	assert.Empty(t, responseText(nil))
}
