package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// AnalyzeInput is the input schema for the analyze_release_notes tool.
type AnalyzeInput struct {
	ReleaseNotes string `json:"release_notes" jsonschema:"the release notes text"`
	Version      string `json:"version,omitempty" jsonschema:"release version label"`
	Date         string `json:"date,omitempty" jsonschema:"release date label"`
	TopN         int    `json:"top_n,omitempty" jsonschema:"number of matched articles (default 5)"`
	GapCap       int    `json:"gap_cap,omitempty" jsonschema:"maximum number of gaps (default 5)"`
}

// AnalyzeOutput is the output schema for the analyze_release_notes tool.
type AnalyzeOutput struct {
	ID                    string          `json:"id"`
	Summary               string          `json:"summary"`
	Method                string          `json:"method"`
	Coverage              string          `json:"coverage"`
	TotalArticlesSearched int             `json:"total_articles_searched"`
	Articles              []ArticleOutput `json:"articles"`
	Gaps                  []GapOutput     `json:"gaps"`
	Topics                []string        `json:"topics"`
}

// ArticleOutput is one matched article.
type ArticleOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	Relevance  int    `json:"relevance"`
	Suggestion string `json:"suggestion"`
}

// GapOutput is one undocumented topic.
type GapOutput struct {
	Topic    string `json:"topic"`
	Mentions int    `json:"mentions"`
	Reason   string `json:"reason,omitempty"`
}

// GapsInput is the input schema for the detect_gaps tool.
type GapsInput struct {
	ReleaseNotes string `json:"release_notes" jsonschema:"the release notes text"`
	Max          int    `json:"max,omitempty" jsonschema:"maximum number of gaps (default 5)"`
	Suggest      bool   `json:"suggest,omitempty" jsonschema:"ask the LLM for feature-level gaps instead of keyword topics"`
}

// GapsOutput is the output schema for the detect_gaps tool.
type GapsOutput struct {
	Gaps  []GapOutput `json:"gaps"`
	Count int         `json:"count"`
}

// ClassifyInput is the input schema for the classify_score tool.
type ClassifyInput struct {
	Score float64 `json:"score" jsonschema:"the score to classify"`
	Scale string  `json:"scale,omitempty" jsonschema:"score scale: 0-1, 0-10 or 0-100 (default 0-1)"`
}

// ClassifyOutput is the output schema for the classify_score tool.
type ClassifyOutput struct {
	Label string `json:"label"`
}

// SuggestInput is the input schema for the suggest_update tool.
type SuggestInput struct {
	ArticleID    string `json:"article_id" jsonschema:"the help-center article ID"`
	ReleaseNotes string `json:"release_notes" jsonschema:"the release notes text"`
}

// SuggestOutput is the output schema for the suggest_update tool.
type SuggestOutput struct {
	ArticleID  string `json:"article_id"`
	Title      string `json:"title"`
	Suggestion string `json:"suggestion"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_release_notes",
		Description: "Match release notes against the help center and list articles to update and undocumented topics",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_gaps",
		Description: "List topics in release notes that no help-center article covers",
	}, s.handleDetectGaps)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_score",
		Description: "Map a relevance or impact score to a suggested documentation action",
	}, s.handleClassify)

	if s.ports.Articles != nil && s.ports.Drafting != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "suggest_update",
			Description: "Advise how to update one help-center article for the release",
		}, s.handleSuggestUpdate)
	}
}

// handleAnalyze handles the analyze_release_notes tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	result, err := s.ports.Analysis.Analyze(ctx, domain.AnalysisRequest{
		ReleaseNotes: input.ReleaseNotes,
		Version:      input.Version,
		Date:         input.Date,
		TopN:         input.TopN,
		GapCap:       input.GapCap,
	})
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{
		ID:                    result.ID,
		Summary:               result.Summary,
		Method:                string(result.Method),
		Coverage:              string(domain.CoverageFor(len(result.Articles))),
		TotalArticlesSearched: result.TotalArticlesSearched,
		Articles:              make([]ArticleOutput, len(result.Articles)),
		Gaps:                  gapOutputs(result.Gaps),
		Topics:                make([]string, len(result.Topics)),
	}
	for i, a := range result.Articles {
		output.Articles[i] = ArticleOutput{
			ID:         a.Document.ID,
			Title:      a.Document.Title,
			URL:        a.Document.URL,
			Relevance:  int(domain.Scale0To100.Present(a.RelevanceScore)),
			Suggestion: string(a.Suggestion),
		}
	}
	for i, t := range result.Topics {
		output.Topics[i] = t.String()
	}

	return nil, output, nil
}

// handleDetectGaps handles the detect_gaps tool invocation.
func (s *Server) handleDetectGaps(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GapsInput,
) (*mcp.CallToolResult, GapsOutput, error) {
	req := domain.AnalysisRequest{ReleaseNotes: input.ReleaseNotes, GapCap: input.Max}

	var (
		gaps []domain.Gap
		err  error
	)
	if input.Suggest {
		gaps, err = s.ports.Analysis.SuggestGaps(ctx, req)
	} else {
		gaps, err = s.ports.Analysis.DetectGaps(ctx, req)
	}
	if err != nil {
		return nil, GapsOutput{}, err
	}

	out := gapOutputs(gaps)
	return nil, GapsOutput{Gaps: out, Count: len(out)}, nil
}

// handleClassify handles the classify_score tool invocation.
func (s *Server) handleClassify(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	scale, err := parseScale(input.Scale)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	label := s.ports.Analysis.Classify(input.Score, scale)
	return nil, ClassifyOutput{Label: string(label)}, nil
}

// handleSuggestUpdate handles the suggest_update tool invocation.
func (s *Server) handleSuggestUpdate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	if input.ReleaseNotes == "" {
		return nil, SuggestOutput{}, domain.ErrEmptyReleaseNotes
	}
	doc, err := s.ports.Articles.Get(ctx, input.ArticleID)
	if err != nil {
		return nil, SuggestOutput{}, err
	}
	advice, err := s.ports.Drafting.SuggestUpdate(ctx, input.ReleaseNotes, *doc)
	if err != nil {
		return nil, SuggestOutput{}, err
	}
	return nil, SuggestOutput{ArticleID: doc.ID, Title: doc.Title, Suggestion: advice}, nil
}

func gapOutputs(gaps []domain.Gap) []GapOutput {
	out := make([]GapOutput, len(gaps))
	for i, g := range gaps {
		out[i] = GapOutput{Topic: g.Topic.String(), Mentions: g.Mentions, Reason: g.Reason}
	}
	return out
}

// parseScale accepts "0-1", "0-10" and "0-100"; empty means 0-1.
func parseScale(s string) (domain.Scale, error) {
	if s == "" {
		return domain.Scale0To1, nil
	}
	scale := domain.Scale(s)
	if !scale.IsValid() {
		return "", fmt.Errorf("%w: unknown scale %q", domain.ErrInvalidInput, s)
	}
	return scale, nil
}
