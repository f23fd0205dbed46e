// Package tools defines the capability boundary the session handler executes
// model-requested tool calls against, and a registry-backed implementation.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Executor performs one external action on behalf of the model. Execution is
// synchronous from the session's point of view and is attempted exactly once
// per requested call.
type Executor interface {
	Execute(ctx context.Context, name string, arguments map[string]any) (map[string]any, error)
}

// ErrToolNotFound reports a tool name the executor does not know.
var ErrToolNotFound = errors.New("tool not found")

// ParameterBase describes one tool parameter for the declared schema.
type ParameterBase struct {
	Type        string
	Description string
	Enum        []string
}

// Tool couples a declared schema with its execution function.
type Tool struct {
	Name        string
	Description string

	parameters map[string]ParameterBase
	required   []string
	reflected  any

	execute func(ctx context.Context, arguments map[string]any) (map[string]any, error)
}

// New builds a tool whose handler receives the arguments unmarshalled into a
// typed parameter struct. required lists the parameter names the model must
// always provide.
func New[T any](name, description string, parameters map[string]ParameterBase, required []string, handler func(ctx context.Context, params T) (map[string]any, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		parameters:  parameters,
		required:    required,
		execute:     typedExecute(handler),
	}
}

// NewReflected builds a tool whose parameter schema is reflected from the
// handler's parameter struct tags instead of an explicit parameter map.
func NewReflected[T any](name, description string, handler func(ctx context.Context, params T) (map[string]any, error)) Tool {
	var params T
	return Tool{
		Name:        name,
		Description: description,
		reflected:   params,
		execute:     typedExecute(handler),
	}
}

func typedExecute[T any](handler func(ctx context.Context, params T) (map[string]any, error)) func(context.Context, map[string]any) (map[string]any, error) {
	return func(ctx context.Context, arguments map[string]any) (map[string]any, error) {
		encoded, err := json.Marshal(arguments)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tool arguments: %w", err)
		}

		var params T
		if err := json.Unmarshal(encoded, &params); err != nil {
			return nil, fmt.Errorf("failed to decode tool arguments: %w", err)
		}

		return handler(ctx, params)
	}
}

// Registry is a name-keyed Executor over a fixed set of tools.
type Registry struct {
	tools []Tool
}

func NewRegistry(tools ...Tool) *Registry {
	return &Registry{tools: tools}
}

func (r *Registry) Register(tools ...Tool) {
	r.tools = append(r.tools, tools...)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

func (r *Registry) Execute(ctx context.Context, name string, arguments map[string]any) (map[string]any, error) {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", name))

	for _, tool := range r.tools {
		if tool.Name != name {
			continue
		}

		result, err := tool.execute(ctx, arguments)
		if err != nil {
			err = fmt.Errorf("failed to execute tool %q: %w", name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return result, nil
	}

	err := fmt.Errorf("%w: %s", ErrToolNotFound, name)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}
