package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemind/venturemind-backend/internal/models"
	"github.com/venturemind/venturemind-backend/internal/venture"
)

type fakeRunner struct {
	ideas  []string
	result models.CompositeResult
	err    error
}

func (f *fakeRunner) ProduceStartupPack(_ context.Context, idea string) (models.CompositeResult, error) {
	f.ideas = append(f.ideas, idea)
	if strings.TrimSpace(idea) == "" {
		return models.CompositeResult{}, &venture.InputError{Reason: "Startup idea is empty."}
	}
	return f.result, f.err
}

func setupRouter(runner Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewA2AHandler(runner, "http://agent.example.com/")
	r := gin.New()
	r.GET("/.well-known/agent.json", h.ServeAgentCard)
	r.POST("/a2a/venture", h.HandleVenture)
	return r
}

func post(t *testing.T, r http.Handler, body string) JSONRPCResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/a2a/venture", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp JSONRPCResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeTask(t *testing.T, resp JSONRPCResponse) TaskResult {
	t.Helper()
	require.Nil(t, resp.Error)
	b, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var task TaskResult
	require.NoError(t, json.Unmarshal(b, &task))
	return task
}

const sendBody = `{
  "jsonrpc": "2.0",
  "id": 7,
  "method": "message/send",
  "params": {"message": {"kind": "message", "role": "user", "parts": [{"kind": "text", "text": "A subscription service for rare houseplants"}]}}
}`

func TestHandleVentureSuccess(t *testing.T) {
	runner := &fakeRunner{result: models.CompositeResult{
		ReplyMarkdown:    "## 🚀 Startup Summary\nLeafLoop",
		StartupPack:      models.StartupPack{StartupSummary: "LeafLoop"},
		CompetitorMatrix: []models.CompetitorRow{{Name: "Horti"}},
	}}
	resp := post(t, setupRouter(runner), sendBody)

	assert.JSONEq(t, "7", string(resp.ID))
	task := decodeTask(t, resp)
	assert.Equal(t, StateCompleted, task.Status.State)
	assert.Equal(t, "task", task.Kind)
	require.NotNil(t, task.Status.Message)
	assert.Equal(t, runner.result.ReplyMarkdown, task.Status.Message.Parts[0].Text)
	require.Len(t, task.Artifacts, 2)
	assert.Equal(t, "data", task.Artifacts[1].Parts[0].Kind)
	assert.Equal(t, []string{"A subscription service for rare houseplants"}, runner.ideas)
}

func TestHandleVentureBlankIdeaFailsTask(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":"1","method":"agent/task","params":{"message":{"role":"user","parts":[{"kind":"text","text":"   "}]}}}`
	task := decodeTask(t, post(t, setupRouter(&fakeRunner{}), body))

	assert.Equal(t, StateFailed, task.Status.State)
	assert.Contains(t, task.Status.Message.Parts[0].Text, "Please provide a startup idea")
	assert.Empty(t, task.Artifacts)
}

func TestHandleVentureGenerationFailure(t *testing.T) {
	runner := &fakeRunner{err: &venture.PrimaryGenerationError{Err: errors.New("quota exceeded")}}
	task := decodeTask(t, post(t, setupRouter(runner), sendBody))

	assert.Equal(t, StateFailed, task.Status.State)
	assert.Contains(t, task.Status.Message.Parts[0].Text, "quota exceeded")
}

func TestHandleVentureRPCErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad version", `{"jsonrpc":"1.0","id":1,"method":"message/send","params":{}}`, CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"tasks/cancel","params":{}}`, CodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":1,"method":"message/send","params":{"message":"nope"}}`, CodeInvalidParams},
		{"not json", `{{{`, CodeParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, setupRouter(&fakeRunner{}), tt.body)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestHandleDirectMessage(t *testing.T) {
	runner := &fakeRunner{result: models.CompositeResult{ReplyMarkdown: "md"}}
	body := `{"message":{"role":"user","parts":[{"kind":"text","text":"Dog walking app"}]}}`
	task := decodeTask(t, post(t, setupRouter(runner), body))
	assert.Equal(t, StateCompleted, task.Status.State)
	assert.Equal(t, []string{"Dog walking app"}, runner.ideas)
}

func TestServeAgentCard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	w := httptest.NewRecorder()
	setupRouter(&fakeRunner{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var card AgentCard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
	assert.Equal(t, "VentureMind", card.Name)
	assert.Equal(t, "http://agent.example.com/a2a/venture", card.URL)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "startup-pack", card.Skills[0].ID)
}

func TestExtractIdea(t *testing.T) {
	history := []map[string]any{
		{"kind": "text", "text": "<p>A marketplace for used climbing gear</p>"},
		{"kind": "text", "text": "Generating your startup pack..."},
		{"kind": "text", "text": "..."},
	}
	tests := []struct {
		name string
		msg  A2AMessage
		want string
	}{
		{"text parts joined", A2AMessage{Parts: []MessagePart{TextPart(" one "), TextPart("two")}}, "one two"},
		{"history skips progress", A2AMessage{Parts: []MessagePart{DataPart(history)}}, "A marketplace for used climbing gear"},
		{"history as string", A2AMessage{Parts: []MessagePart{DataPart(`[{"kind":"text","text":"Solar kiosks"}]`)}}, "Solar kiosks"},
		{"unusable data", A2AMessage{Parts: []MessagePart{DataPart(map[string]any{"x": 1})}}, ""},
		{"empty", A2AMessage{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractIdea(tt.msg))
		})
	}
}
