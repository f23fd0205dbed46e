// Package insurance provides the tool set an insurance call agent
// exposes to the model: opening and amending claims, escalating to a
// human agent, ending the call, and querying the knowledge base.
package insurance

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Cloudinfo-Github/call-center-ai/core/knowledge"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
)

// Searcher answers free-text knowledge queries. *knowledge.Engine
// implements it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error)
}

// Plugin bundles the insurance tools around a claim store. Attach it
// to a registry with [Plugin.Register].
type Plugin struct {
	claims   ClaimStore
	searcher Searcher

	onTransfer func(reason string)
	onEnd      func(summary string)

	ended atomic.Bool
}

// PluginOption configures a [Plugin].
type PluginOption func(*Plugin)

// WithKnowledge enables the search_knowledge tool.
func WithKnowledge(searcher Searcher) PluginOption {
	return func(p *Plugin) {
		p.searcher = searcher
	}
}

// WithTransferHandler is called when the model escalates to a human
// agent.
func WithTransferHandler(handler func(reason string)) PluginOption {
	return func(p *Plugin) {
		p.onTransfer = handler
	}
}

// WithEndHandler is called when the model ends the call.
func WithEndHandler(handler func(summary string)) PluginOption {
	return func(p *Plugin) {
		p.onEnd = handler
	}
}

// NewPlugin constructs the insurance tool set over a claim store.
func NewPlugin(claims ClaimStore, opts ...PluginOption) *Plugin {
	plugin := &Plugin{claims: claims}
	for _, opt := range opts {
		opt(plugin)
	}
	return plugin
}

// CallEnded reports whether the model has requested the call to end.
func (p *Plugin) CallEnded() bool {
	return p.ended.Load()
}

// Register adds the plugin's tools to a registry.
func (p *Plugin) Register(registry *tools.Registry) {
	registry.Register(p.Tools()...)
}

// Tools returns the plugin's tool set. search_knowledge is only
// included when a searcher is configured.
func (p *Plugin) Tools() []tools.Tool {
	toolSet := []tools.Tool{
		p.createClaimTool(),
		p.updateClaimFieldTool(),
		p.transferToAgentTool(),
		p.endCallTool(),
	}
	if p.searcher != nil {
		toolSet = append(toolSet, p.searchKnowledgeTool())
	}
	return toolSet
}

type createClaimParams struct {
	CallerName   string `json:"caller_name"`
	IncidentDate string `json:"incident_date"`
	Description  string `json:"description"`
}

func (p *Plugin) createClaimTool() tools.Tool {
	return tools.New("create_claim", "Open a new insurance claim for the caller.",
		map[string]tools.ParameterBase{
			"caller_name":   {Type: "string", Description: "Full name of the caller"},
			"incident_date": {Type: "string", Description: "Date of the incident (ISO 8601)"},
			"description":   {Type: "string", Description: "Short description of the incident"},
		},
		[]string{"caller_name", "incident_date", "description"},
		func(ctx context.Context, params createClaimParams) (map[string]any, error) {
			claim, err := p.claims.Create(ctx, Claim{
				CallerName:   params.CallerName,
				IncidentDate: params.IncidentDate,
				Description:  params.Description,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create claim: %w", err)
			}

			logger.Info("claim created", "claim_id", claim.ID)
			return map[string]any{
				"success":  true,
				"claim_id": claim.ID,
				"status":   string(claim.Status),
			}, nil
		},
	)
}

type updateClaimFieldParams struct {
	ClaimID string `json:"claim_id"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

func (p *Plugin) updateClaimFieldTool() tools.Tool {
	return tools.New("update_claim_field", "Update a single field on an existing claim.",
		map[string]tools.ParameterBase{
			"claim_id": {Type: "string", Description: "Identifier of the claim to update"},
			"field":    {Type: "string", Description: "Field to update", Enum: EditableFields},
			"value":    {Type: "string", Description: "New value for the field"},
		},
		[]string{"claim_id", "field", "value"},
		func(ctx context.Context, params updateClaimFieldParams) (map[string]any, error) {
			claim, err := p.claims.UpdateField(ctx, params.ClaimID, params.Field, params.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to update claim: %w", err)
			}

			return map[string]any{
				"success":  true,
				"claim_id": claim.ID,
				"field":    params.Field,
				"value":    params.Value,
			}, nil
		},
	)
}

type transferToAgentParams struct {
	Reason  string `json:"reason"`
	ClaimID string `json:"claim_id,omitempty"`
}

func (p *Plugin) transferToAgentTool() tools.Tool {
	return tools.New("transfer_to_agent", "Transfer the caller to a human agent.",
		map[string]tools.ParameterBase{
			"reason":   {Type: "string", Description: "Why the caller needs a human agent"},
			"claim_id": {Type: "string", Description: "Claim being discussed, if any"},
		},
		[]string{"reason"},
		func(ctx context.Context, params transferToAgentParams) (map[string]any, error) {
			if params.ClaimID != "" {
				if _, err := p.claims.UpdateStatus(ctx, params.ClaimID, ClaimStatusTransferred); err != nil {
					logger.Warn("failed to mark claim transferred",
						"claim_id", params.ClaimID, "error", err,
					)
				}
			}

			logger.Info("transferring to human agent", "reason", params.Reason)
			if p.onTransfer != nil {
				p.onTransfer(params.Reason)
			}
			return map[string]any{
				"success":            true,
				"transfer_initiated": true,
			}, nil
		},
	)
}

type endCallParams struct {
	Summary string `json:"summary,omitempty"`
}

func (p *Plugin) endCallTool() tools.Tool {
	return tools.New("end_call", "End the call once the caller is helped.",
		map[string]tools.ParameterBase{
			"summary": {Type: "string", Description: "Short summary of the call"},
		},
		nil,
		func(ctx context.Context, params endCallParams) (map[string]any, error) {
			p.ended.Store(true)
			logger.Info("call end requested", "summary", params.Summary)
			if p.onEnd != nil {
				p.onEnd(params.Summary)
			}
			return map[string]any{"success": true}, nil
		},
	)
}

type searchKnowledgeParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (p *Plugin) searchKnowledgeTool() tools.Tool {
	return tools.New("search_knowledge", "Look up policy and coverage information.",
		map[string]tools.ParameterBase{
			"query": {Type: "string", Description: "What to look up"},
			"limit": {Type: "integer", Description: "Maximum number of results"},
		},
		[]string{"query"},
		func(ctx context.Context, params searchKnowledgeParams) (map[string]any, error) {
			results, err := p.searcher.Search(ctx, params.Query, params.Limit)
			if err != nil {
				return nil, fmt.Errorf("failed to search knowledge base: %w", err)
			}

			entries := make([]map[string]any, 0, len(results))
			for _, result := range results {
				entries = append(entries, map[string]any{
					"content":    result.Document.Content,
					"category":   result.Document.Category,
					"similarity": result.Similarity,
				})
			}
			return map[string]any{
				"success": true,
				"count":   len(entries),
				"results": entries,
			}, nil
		},
	)
}
