package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// uriScheme is the custom URI scheme for docgap resources.
const uriScheme = "docgap://"

// articlesPerPage is the page size of the article listing resource.
const articlesPerPage = 100

// registerResources registers the article resources when an article port is wired.
func (s *Server) registerResources() {
	if s.ports.Articles == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "articles",
		Name:        "articles",
		Description: "First page of help-center articles",
		MIMEType:    "application/json",
	}, s.handleArticlesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "articles/{articleId}",
		Name:        "article",
		Description: "One help-center article as markdown",
		MIMEType:    "text/markdown",
	}, s.handleArticleResource)
}

// handleArticlesResource returns the first page of articles.
func (s *Server) handleArticlesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	page, err := s.ports.Articles.List(ctx, 1, articlesPerPage)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	type articleInfo struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url,omitempty"`
		URI   string `json:"uri"`
	}

	infos := make([]articleInfo, len(page.Articles))
	for i, a := range page.Articles {
		infos[i] = articleInfo{
			ID:    a.ID,
			Title: a.Title,
			URL:   a.URL,
			URI:   uriScheme + "articles/" + a.ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling articles: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleArticleResource returns one article rendered as markdown.
func (s *Server) handleArticleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractArticleID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Articles.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     articleMarkdown(doc),
		}},
	}, nil
}

func articleMarkdown(doc *domain.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.URL != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", doc.URL)
	}
	b.WriteString(doc.Body)
	return b.String()
}

// extractArticleID extracts the ID from a URI like docgap://articles/{articleId}.
func extractArticleID(uri string) string {
	const prefix = uriScheme + "articles/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
