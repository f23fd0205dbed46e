package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestRegistryExecutesTypedHandler(t *testing.T) {
	registry := NewRegistry(New("end_call", "End the current call",
		map[string]ParameterBase{
			"summary": {Type: "string", Description: "Call summary"},
		},
		nil,
		func(_ context.Context, params struct {
			Summary string `json:"summary"`
		}) (map[string]any, error) {
			return map[string]any{"success": true, "summary": params.Summary}, nil
		}))

	result, err := registry.Execute(context.Background(), "end_call", map[string]any{"summary": "done"})
	if err != nil {
		t.Fatalf("expected execution to succeed, got %v", err)
	}
	if result["success"] != true {
		t.Fatalf("expected success result, got %v", result)
	}
	if result["summary"] != "done" {
		t.Fatalf("expected summary to round-trip, got %v", result["summary"])
	}
}

func TestRegistryReportsUnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Execute(context.Background(), "missing", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestRegistryWrapsHandlerFailure(t *testing.T) {
	registry := NewRegistry(New("flaky", "Always fails", nil, nil,
		func(context.Context, struct{}) (map[string]any, error) {
			return nil, fmt.Errorf("backend unavailable")
		}))

	_, err := registry.Execute(context.Background(), "flaky", nil)
	if err == nil {
		t.Fatalf("expected an execution error")
	}
}

func TestDeclarationCarriesParameters(t *testing.T) {
	tool := New("create_claim", "Create a new insurance claim",
		map[string]ParameterBase{
			"caller_name": {Type: "string", Description: "Customer name"},
			"severity":    {Type: "string", Enum: []string{"low", "high"}},
		},
		[]string{"caller_name"},
		func(context.Context, struct{}) (map[string]any, error) { return nil, nil })

	declaration := tool.Declaration()
	if declaration.Type != "function" || declaration.Name != "create_claim" {
		t.Fatalf("unexpected declaration header: %+v", declaration)
	}

	encoded, err := json.Marshal(declaration)
	if err != nil {
		t.Fatalf("failed to marshal declaration: %v", err)
	}

	var decoded struct {
		Parameters struct {
			Type       string `json:"type"`
			Required   []string
			Properties map[string]struct {
				Type string   `json:"type"`
				Enum []string `json:"enum"`
			} `json:"properties"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("failed to unmarshal declaration: %v", err)
	}

	if decoded.Parameters.Type != "object" {
		t.Fatalf("expected object parameter schema, got %q", decoded.Parameters.Type)
	}
	if _, ok := decoded.Parameters.Properties["caller_name"]; !ok {
		t.Fatalf("expected caller_name property, got %v", decoded.Parameters.Properties)
	}
	if got := decoded.Parameters.Properties["severity"].Enum; len(got) != 2 {
		t.Fatalf("expected severity enum of 2 values, got %v", got)
	}
}

func TestReflectedDeclarationUsesStructTags(t *testing.T) {
	tool := NewReflected("transfer_to_agent", "Transfer the call to a human agent",
		func(_ context.Context, params struct {
			Reason string `json:"reason" jsonschema:"description=Why the call is being transferred"`
		}) (map[string]any, error) {
			return map[string]any{"success": true}, nil
		})

	encoded, err := json.Marshal(tool.Declaration())
	if err != nil {
		t.Fatalf("failed to marshal declaration: %v", err)
	}

	var decoded struct {
		Parameters struct {
			Properties map[string]any `json:"properties"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("failed to unmarshal declaration: %v", err)
	}
	if _, ok := decoded.Parameters.Properties["reason"]; !ok {
		t.Fatalf("expected reflected reason property, got %v", decoded.Parameters.Properties)
	}
}
