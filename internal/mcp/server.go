// Package mcp exposes the scoring, validation, sizing, sensitivity and
// composition engines as MCP tools so an agent can call them directly
// instead of shelling out to the CLI.
package mcp

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/compose"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
	"github.com/lool-ventures/founder-skills/cli/internal/sensitivity"
	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
	"github.com/lool-ventures/founder-skills/cli/internal/validate"
)

// ErrMissingDocument is returned when a validation tool gets no document.
var ErrMissingDocument = errors.New("document is required")

// Server wraps the MCP SDK server. Handlers share no mutable state, so tool
// calls may run concurrently.
type Server struct {
	MCPServer *sdkmcp.Server

	log     *zap.Logger
	compose []compose.Option
}

// NewServer creates a server named name with every tool registered.
// opts are applied to each composition.
func NewServer(name, version string, log *zap.Logger, opts ...compose.Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: name, Version: version}, nil),
		log:       log.With(zap.String("component", "mcp")),
		compose:   append([]compose.Option{compose.WithLogger(log)}, opts...),
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "score_rubric",
		Description: "Score assessment items against an embedded rubric (deck-review, market-sizing, ic-dimensions). Every canonical item must appear exactly once.",
	}, s.handleScore)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_fund_profile",
		Description: "Validate a fund profile. Returns the profile with a validation block.",
	}, s.handleFundProfile)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_conflicts",
		Description: "Deduplicate and validate a portfolio conflict check. Returns the check with summary and validation.",
	}, s.handleConflicts)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "size_market",
		Description: "Compute TAM/SAM/SOM top-down, bottom-up or both, with optional growth projection.",
	}, s.handleSizing)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_sensitivity",
		Description: "Stress-test sizing assumptions one parameter at a time and rank them by SOM swing.",
	}, s.handleSensitivity)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "compose_report",
		Description: "Compose the final report for a workflow run directory. Returns markdown, validation warnings and a fingerprint.",
	}, s.handleCompose)
}

// --- Tool input types ---
//
// Outputs are returned as any so the tools carry no output schema: their
// JSON is the engines' own encoding, identical to the CLI's.

type scoreInput struct {
	Rubric string         `json:"rubric" jsonschema:"rubric name: deck-review, market-sizing or ic-dimensions"`
	Items  []scoring.Item `json:"items" jsonschema:"one entry per canonical rubric item"`
}

type documentInput struct {
	Document map[string]any `json:"document" jsonschema:"the JSON document to validate"`
}

type composeInput struct {
	Workflow string `json:"workflow" jsonschema:"market-sizing, deck-review or ic-sim"`
	Dir      string `json:"dir" jsonschema:"run directory containing the workflow's artifacts"`
	Strict   bool   `json:"strict,omitempty" jsonschema:"fail when unacknowledged high or medium warnings remain"`
}

// --- Tool handlers ---

func (s *Server) handleScore(_ context.Context, _ *sdkmcp.CallToolRequest, in scoreInput) (*sdkmcp.CallToolResult, any, error) {
	r, err := scoring.Load(in.Rubric)
	if err != nil {
		return nil, nil, err
	}
	res, err := scoring.Score(r, in.Items)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range res.Evidence {
		s.log.Warn("missing evidence", zap.String("rubric", r.Name), zap.String("id", w.ID), zap.String("status", w.Status))
	}
	return nil, res, nil
}

func (s *Server) handleFundProfile(_ context.Context, _ *sdkmcp.CallToolRequest, in documentInput) (*sdkmcp.CallToolResult, any, error) {
	if in.Document == nil {
		return nil, nil, ErrMissingDocument
	}
	out, _ := validate.FundProfile(in.Document)
	return nil, out, nil
}

func (s *Server) handleConflicts(_ context.Context, _ *sdkmcp.CallToolRequest, in documentInput) (*sdkmcp.CallToolResult, any, error) {
	if in.Document == nil {
		return nil, nil, ErrMissingDocument
	}
	rep := validate.Conflicts(in.Document)
	for _, d := range rep.Dropped {
		s.log.Warn("duplicate conflict dropped", zap.String("company", d.Company), zap.String("type", d.Type))
	}
	return nil, rep.Output(), nil
}

func (s *Server) handleSizing(_ context.Context, _ *sdkmcp.CallToolRequest, in sizing.Input) (*sdkmcp.CallToolResult, any, error) {
	res, err := sizing.Calculate(in)
	if err != nil {
		return nil, nil, err
	}
	for _, n := range res.Notes {
		s.log.Info("sizing note", zap.String("note", n))
	}
	return nil, res, nil
}

func (s *Server) handleSensitivity(_ context.Context, _ *sdkmcp.CallToolRequest, in sensitivity.Request) (*sdkmcp.CallToolResult, any, error) {
	res, err := sensitivity.Analyze(in)
	if err != nil {
		return nil, nil, err
	}
	for _, n := range res.Notes {
		s.log.Info("sensitivity note", zap.String("note", n))
	}
	return nil, res, nil
}

func (s *Server) handleCompose(ctx context.Context, _ *sdkmcp.CallToolRequest, in composeInput) (*sdkmcp.CallToolResult, any, error) {
	if in.Dir == "" {
		return nil, nil, errors.New("dir is required")
	}
	c, err := compose.New(in.Workflow, s.compose...)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.Compose(ctx, in.Dir)
	if err != nil {
		return nil, nil, err
	}
	if n := len(res.Blocking()); in.Strict && n > 0 {
		return nil, nil, fmt.Errorf("%w: %d remaining", compose.ErrStrict, n)
	}
	return nil, res, nil
}
