// Package a2a exposes startup pack generation as an agent-to-agent JSON-RPC
// task endpoint.
package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/venturemind/venturemind-backend/internal/models"
	"github.com/venturemind/venturemind-backend/internal/venture"
)

const agentVersion = "1.0.0"

type Runner interface {
	ProduceStartupPack(ctx context.Context, idea string) (models.CompositeResult, error)
}

type A2AHandler struct {
	runner  Runner
	baseURL string
	logger  *slog.Logger
}

// NewA2AHandler builds the handler. baseURL is advertised in the agent card.
func NewA2AHandler(runner Runner, baseURL string) *A2AHandler {
	return &A2AHandler{
		runner:  runner,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  slog.Default().With("component", "a2a"),
	}
}

// HandleVenture processes A2A messages.
func (h *A2AHandler) HandleVenture(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read request body", "error", err)
		h.sendErrorResponse(c, nil, "Failed to read request body", CodeParseError)
		return
	}

	var rpcReq JSONRPCRequest
	if err := json.Unmarshal(bodyBytes, &rpcReq); err != nil || rpcReq.Method == "" {
		// Some clients post the message params without the JSON-RPC wrapper.
		h.handleDirectMessage(c, bodyBytes)
		return
	}

	h.logger.Info("rpc request", "method", rpcReq.Method, "id", string(rpcReq.ID))

	if rpcReq.JSONRPC != "2.0" {
		h.logger.Warn("invalid JSON-RPC version", "version", rpcReq.JSONRPC)
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "agent/task", "message/send":
		h.handleTask(c, rpcReq)
	default:
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

func (h *A2AHandler) handleDirectMessage(c *gin.Context, bodyBytes []byte) {
	var msgParams MessageParams
	if err := json.Unmarshal(bodyBytes, &msgParams); err != nil {
		h.logger.Error("failed to parse as direct message", "error", err)
		h.sendErrorResponse(c, nil, "Invalid request format", CodeParseError)
		return
	}
	result := h.run(c.Request.Context(), msgParams.Message)
	h.sendSuccessResponse(c, nil, result)
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	var msgParams MessageParams
	if err := json.Unmarshal(rpcReq.Params, &msgParams); err != nil {
		h.logger.Error("failed to unmarshal params", "error", err)
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}
	result := h.run(c.Request.Context(), msgParams.Message)
	h.sendSuccessResponse(c, rpcReq.ID, result)
}

// run turns one inbound message into a finished task. Generation failures
// become failed tasks rather than RPC errors.
func (h *A2AHandler) run(ctx context.Context, msg A2AMessage) TaskResult {
	taskID := uuid.NewString()
	contextID := ""
	if msg.ContextID != nil {
		contextID = *msg.ContextID
	}

	idea := extractIdea(msg)
	h.logger.Info("generating startup pack", "task_id", taskID, "idea_len", len(idea))

	result, err := h.runner.ProduceStartupPack(ctx, idea)
	if err != nil {
		var inputErr *venture.InputError
		if errors.As(err, &inputErr) {
			return createErrorTaskResult(taskID, contextID, "Please provide a startup idea to generate a startup pack.")
		}
		h.logger.Error("generation failed", "task_id", taskID, "error", err)
		return createErrorTaskResult(taskID, contextID, fmt.Sprintf("Failed to generate startup pack: %v", err))
	}

	h.logger.Info("generation succeeded", "task_id", taskID, "competitor_rows", len(result.CompetitorMatrix))
	return createSuccessTaskResult(taskID, contextID, result)
}

// ServeAgentCard describes this agent.
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, h.AgentCard())
}

func (h *A2AHandler) AgentCard() AgentCard {
	return AgentCard{
		Name:        "VentureMind",
		Description: "Turns a one-line startup idea into a startup pack: summary, brand identity, financials, pitch outline, a real-world scenario and a competitor matrix.",
		URL:         h.baseURL + "/a2a/venture",
		Version:     agentVersion,
		Capabilities: Capabilities{
			Streaming:         false,
			PushNotifications: false,
		},
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/markdown", "application/json"},
		Skills: []Skill{{
			ID:          "startup-pack",
			Name:        "Startup pack generation",
			Description: "Generates a branded startup pack and competitor matrix for a business idea.",
			Tags:        []string{"startup", "branding", "pitch", "competitors"},
			Examples:    []string{"A subscription service for rare houseplants"},
		}},
	}
}

// extractIdea joins the text parts of msg. Data parts carrying conversation
// history contribute their most recent user-looking text.
func extractIdea(msg A2AMessage) string {
	var texts []string

	for _, part := range msg.Parts {
		switch part.Kind {
		case "text":
			if t := strings.TrimSpace(part.Text); t != "" {
				texts = append(texts, t)
			}
		case "data":
			if t := latestHistoryText(part.Data); t != "" {
				texts = append(texts, t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(texts, " "))
}

var paragraphTags = strings.NewReplacer("<p>", "", "</p>", "")

func latestHistoryText(data any) string {
	var raw []byte
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		raw = b
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}

	for i := len(items) - 1; i >= 0; i-- {
		if kind, _ := items[i]["kind"].(string); kind != "text" {
			continue
		}
		text, _ := items[i]["text"].(string)
		text = strings.TrimSpace(paragraphTags.Replace(strings.TrimSpace(text)))
		if isProgressText(text) {
			continue
		}
		return text
	}
	return ""
}

// isProgressText reports agent status chatter that ends up in history.
func isProgressText(text string) bool {
	lower := strings.ToLower(text)
	return text == "" ||
		strings.Trim(text, ".") == "" ||
		strings.Contains(lower, "generating") ||
		strings.Contains(lower, "creating")
}

func createSuccessTaskResult(taskID, contextID string, result models.CompositeResult) TaskResult {
	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateCompleted,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    &taskID,
				Parts:     []MessagePart{TextPart(result.ReplyMarkdown)},
			},
		},
		Artifacts: []Artifact{
			{
				ArtifactID: uuid.NewString(),
				Name:       "Startup Pack",
				Parts:      []MessagePart{TextPart(result.ReplyMarkdown)},
			},
			{
				ArtifactID: uuid.NewString(),
				Name:       "Startup Pack Data",
				Parts:      []MessagePart{DataPart(result)},
			},
		},
	}
}

func createErrorTaskResult(taskID, contextID, errorMsg string) TaskResult {
	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateFailed,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    &taskID,
				Parts:     []MessagePart{TextPart(errorMsg)},
			},
		},
	}
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id json.RawMessage, result TaskResult) {
	h.logger.Info("sending task result", "task_id", result.ID, "state", result.Status.State)
	c.JSON(http.StatusOK, JSONRPCResponse{JSONRPC: "2.0", ID: rawID(id), Result: result})
}

func (h *A2AHandler) sendErrorResponse(c *gin.Context, id json.RawMessage, message string, code int) {
	h.logger.Warn("sending rpc error", "code", code, "message", message)
	// JSON-RPC errors are sent with 200 OK.
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      rawID(id),
		Error:   &RPCError{Code: code, Message: message},
	})
}

func rawID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
