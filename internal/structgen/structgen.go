// Package structgen turns a chat-style generative model into a typed
// generator: given messages and one of a fixed set of output shapes it
// returns a Go value conforming to that shape, or fails.
package structgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

var (
	ErrMissingCredentials = errors.New("provider credentials are not configured")
	ErrEmptyPrompt        = errors.New("prompt is empty")
	ErrNonConformant      = errors.New("model output does not conform to schema")
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }
func HumanMessage(content string) Message  { return Message{Role: RoleUser, Content: content} }

// Invoker is the structured-generation capability of a model provider. The
// returned JSON is expected to match schema; Generate verifies it anyway.
type Invoker interface {
	Invoke(ctx context.Context, messages []Message, schemaName string, schema *Schema) (json.RawMessage, error)
}

// GenerationError reports a failed structured call. Task is the log tag of
// the caller (core, scenario, competitors).
type GenerationError struct {
	Task   string
	Schema string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("structgen: %s generation (%s) failed: %v", e.Task, e.Schema, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Definition binds a named schema to the Go type it decodes into.
type Definition[T any] struct {
	Name   string
	Schema *Schema
}

// Generate issues one structured call and decodes the result into T. Any
// upstream error, missing credential or schema violation is returned as a
// *GenerationError; no partially populated value is ever returned.
func Generate[T any](ctx context.Context, inv Invoker, task string, messages []Message, def Definition[T]) (T, error) {
	var zero T
	fail := func(err error) (T, error) {
		return zero, &GenerationError{Task: task, Schema: def.Name, Err: err}
	}

	if inv == nil {
		return fail(ErrMissingCredentials)
	}
	if !hasContent(messages) {
		return fail(ErrEmptyPrompt)
	}

	slog.Info("structured generation started", "task", task, "schema", def.Name)
	raw, err := inv.Invoke(ctx, messages, def.Name, def.Schema)
	if err != nil {
		slog.Warn("structured generation failed", "task", task, "schema", def.Name, "error", err)
		return fail(err)
	}

	raw = trimFences(raw)
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrNonConformant, err))
	}
	if err := def.Schema.Validate(generic); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrNonConformant, err))
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&out); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrNonConformant, err))
	}

	slog.Info("structured generation finished", "task", task, "schema", def.Name)
	return out, nil
}

func hasContent(messages []Message) bool {
	for _, m := range messages {
		if strings.TrimSpace(m.Content) != "" {
			return true
		}
	}
	return false
}

// trimFences drops a ```json ... ``` wrapper some models add even when asked
// for raw JSON. The language tag may sit on its own line or directly before
// the payload.
func trimFences(raw json.RawMessage) json.RawMessage {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return json.RawMessage(s)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if rest := strings.TrimLeftFunc(s, unicode.IsLetter); len(rest) < len(s) {
		if t := strings.TrimSpace(rest); strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
			s = t
		}
	}
	return json.RawMessage(strings.TrimSpace(s))
}
