package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

const defaultPerPage = 30

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}

// bind decodes the JSON body into v, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleAnalysis(c *gin.Context) {
	var body analysisRequest
	if !bind(c, &body) {
		return
	}
	if body.empty() {
		fail(c, http.StatusBadRequest, msgNoInput)
		return
	}

	result, err := s.analyze(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, toAnalysis(result))
}

func (s *Server) analyze(ctx context.Context, body analysisRequest) (*domain.AnalysisResult, error) {
	req := body.request()
	req.TopN = body.TopN
	req.GapCap = body.GapCap
	req.ForceLexical = body.Lexical
	return s.ports.Analysis.Analyze(ctx, req)
}

func (s *Server) handleDetectGaps(c *gin.Context) {
	var body gapsRequest
	if !bind(c, &body) {
		return
	}
	if body.empty() {
		fail(c, http.StatusBadRequest, msgNoInput)
		return
	}

	req := body.request()
	req.GapCap = body.Max
	req.ForceLexical = body.Lexical

	var (
		gaps []domain.Gap
		err  error
	)
	if body.Suggest {
		gaps, err = s.ports.Analysis.SuggestGaps(c.Request.Context(), req)
	} else {
		gaps, err = s.ports.Analysis.DetectGaps(c.Request.Context(), req)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"gaps": toGaps(gaps), "count": len(gaps)})
}

// article resolves the request's article, fetching it when only an ID is given.
func (s *Server) article(ctx context.Context, in articleInput) (*domain.Document, error) {
	if strings.TrimSpace(in.ArticleContent) != "" {
		return &domain.Document{ID: in.ArticleID, Title: in.ArticleTitle, Body: in.ArticleContent}, nil
	}
	if in.ArticleID == "" {
		return nil, fmt.Errorf("%w: articleId or articleContent is required", domain.ErrInvalidInput)
	}
	if s.ports.Articles == nil {
		return nil, domain.ErrCorpusUnavailable
	}
	return s.ports.Articles.Get(ctx, in.ArticleID)
}

// draftingArticle binds an article request and checks the drafting port.
func (s *Server) draftingArticle(c *gin.Context) (*articleRequest, *domain.Document, bool) {
	if s.ports.Drafting == nil {
		fail(c, http.StatusServiceUnavailable, msgNoDrafting)
		return nil, nil, false
	}
	var body articleRequest
	if !bind(c, &body) {
		return nil, nil, false
	}
	if body.empty() {
		fail(c, http.StatusBadRequest, msgNoInput)
		return nil, nil, false
	}
	doc, err := s.article(c.Request.Context(), body.articleInput)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return &body, doc, true
}

func (s *Server) handleCompare(c *gin.Context) {
	body, doc, proceed := s.draftingArticle(c)
	if !proceed {
		return
	}

	cmp, err := s.ports.Drafting.Compare(c.Request.Context(), body.ReleaseNotes, *doc)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, toCompare(cmp))
}

func (s *Server) handleSuggest(c *gin.Context) {
	body, doc, proceed := s.draftingArticle(c)
	if !proceed {
		return
	}

	advice, err := s.ports.Drafting.SuggestUpdate(c.Request.Context(), body.ReleaseNotes, *doc)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"articleId": doc.ID, "title": doc.Title, "suggestion": advice})
}

func (s *Server) handleGenerateArticle(c *gin.Context) {
	if s.ports.Drafting == nil {
		fail(c, http.StatusServiceUnavailable, msgNoDrafting)
		return
	}
	var body generateRequest
	if !bind(c, &body) {
		return
	}
	if body.empty() {
		fail(c, http.StatusBadRequest, msgNoInput)
		return
	}
	if strings.TrimSpace(body.Topic) == "" {
		fail(c, http.StatusBadRequest, "topic is required")
		return
	}

	draft, err := s.ports.Drafting.DraftArticle(c.Request.Context(), body.ReleaseNotes, domain.Topic(body.Topic))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, toDraft(draft))
}

func (s *Server) handleTranslate(c *gin.Context) {
	if s.ports.Drafting == nil {
		fail(c, http.StatusServiceUnavailable, msgNoDrafting)
		return
	}
	var body translateRequest
	if !bind(c, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		fail(c, http.StatusBadRequest, msgNoInput)
		return
	}
	if strings.TrimSpace(body.Language) == "" {
		fail(c, http.StatusBadRequest, "language is required")
		return
	}

	text, err := s.ports.Drafting.Translate(c.Request.Context(), body.Text, body.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"text": text, "language": body.Language})
}

// handleExport writes a report for release notes, or a draft, as a download.
func (s *Server) handleExport(c *gin.Context) {
	if s.ports.Export == nil {
		fail(c, http.StatusServiceUnavailable, msgNoExport)
		return
	}
	var body exportRequest
	if !bind(c, &body) {
		return
	}

	format := domain.ExportJSON
	if body.Format != "" {
		f, valid := domain.ParseExportFormat(body.Format)
		if !valid {
			fail(c, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", body.Format))
			return
		}
		format = f
	}

	var (
		buf  bytes.Buffer
		name string
		err  error
	)
	switch {
	case body.Draft != nil:
		name = "docgap-draft"
		err = s.ports.Export.ExportDraft(&buf, format, fromDraft(body.Draft))
	case body.empty():
		fail(c, http.StatusBadRequest, msgNoInput)
		return
	default:
		var result *domain.AnalysisResult
		if result, err = s.analyze(c.Request.Context(), body.analysisRequest); err == nil {
			name = "docgap-report-" + fileLabel(result.Version)
			err = s.ports.Export.ExportAnalysis(&buf, format, result)
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format.Extension()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// fileLabel makes a version safe for a file name.
func fileLabel(version string) string {
	label := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(version))
	if label == "" {
		return "latest"
	}
	return label
}

func (s *Server) handleListArticles(c *gin.Context) {
	if s.ports.Articles == nil {
		fail(c, http.StatusServiceUnavailable, msgNoArticles)
		return
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	perPage, err := queryInt(c, "perPage", defaultPerPage)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.ports.Articles.List(c.Request.Context(), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, pageJSON{Articles: toArticles(result.Articles), Total: result.Total, Pages: result.Pages, Page: result.Page})
}

func (s *Server) handleSearchArticles(c *gin.Context) {
	if s.ports.Articles == nil {
		fail(c, http.StatusServiceUnavailable, msgNoArticles)
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	docs, err := s.ports.Articles.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"articles": toArticles(docs), "count": len(docs)})
}

func (s *Server) handleGetArticle(c *gin.Context) {
	if s.ports.Articles == nil {
		fail(c, http.StatusServiceUnavailable, msgNoArticles)
		return
	}

	doc, err := s.ports.Articles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, toArticle(*doc, true))
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}
