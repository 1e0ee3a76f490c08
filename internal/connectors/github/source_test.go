package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), Config{Token: "ghp_test", BaseURL: server.URL})
	require.NoError(t, err)
	return NewSource(client)
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		latest  bool
		wantErr bool
	}{
		{in: "acme/modeler", want: Ref{Owner: "acme", Repo: "modeler"}, latest: true},
		{in: "acme/modeler@latest", want: Ref{Owner: "acme", Repo: "modeler", Tag: "latest"}, latest: true},
		{in: "acme/modeler@v2.4.0", want: Ref{Owner: "acme", Repo: "modeler", Tag: "v2.4.0"}},
		{in: "https://github.com/acme/modeler.git", want: Ref{Owner: "acme", Repo: "modeler"}, latest: true},
		{in: "acme", wantErr: true},
		{in: "/modeler", wantErr: true},
		{in: "acme/modeler/extra", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.latest, got.Latest())
		})
	}
}

func TestSource_FetchByTag(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/modeler/releases/tags/v2.4.0", r.URL.Path)
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		w.Header().Set("X-RateLimit-Remaining", "4321")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tag_name": "v2.4.0",
			"name": "Modeler 2.4",
			"body": "<!-- generated -->\r\n## Added\r\n- **IFC4** export, see [docs](https://docs.example.com)\r\n![shot](img.png)",
			"html_url": "https://github.com/acme/modeler/releases/tag/v2.4.0",
			"published_at": "2025-10-01T08:00:00Z"
		}`))
	})

	notes, err := src.Fetch(context.Background(), "acme/modeler@v2.4.0")

	require.NoError(t, err)
	assert.Equal(t, "v2.4.0", notes.Version)
	assert.Equal(t, "2025-10-01", notes.Date)
	assert.Equal(t, "https://github.com/acme/modeler/releases/tag/v2.4.0", notes.Source)
	assert.Equal(t, "## Added\n- IFC4 export, see docs", notes.Text)
	assert.Equal(t, 4321, src.client.Quota().Remaining)
}

func TestSource_FetchLatest(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/modeler/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name": "v3.0.0", "body": "Clash detection rewrite", "created_at": "2025-11-02T10:00:00Z"}`))
	})

	notes, err := src.Fetch(context.Background(), "acme/modeler")

	require.NoError(t, err)
	assert.Equal(t, "v3.0.0", notes.Version)
	assert.Equal(t, "2025-11-02", notes.Date)
	assert.Equal(t, "Clash detection rewrite", notes.Text)
}

func TestSource_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Not Found"}`, wantErr: domain.ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`, wantErr: domain.ErrAuthInvalid},
		{name: "private repo", status: http.StatusForbidden, body: `{"message":"Resource not accessible"}`, wantErr: domain.ErrAuthInvalid},
		{name: "empty body", status: http.StatusOK, body: `{"tag_name":"v1","body":"  "}`, wantErr: domain.ErrEmptyReleaseNotes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := src.Fetch(context.Background(), "acme/modeler@v1")

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSource_FetchNotFoundDetail(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := src.Fetch(context.Background(), "acme/modeler@nope")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.URL, "/releases/tags/nope")
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
}

func TestSource_FetchInvalidRef(t *testing.T) {
	src := newTestSource(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := src.Fetch(context.Background(), "modeler")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.ErrorIs(t, err, ErrInvalidRef)
}

func TestSource_Releases(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/modeler/releases", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{"tag_name": "v3", "body": "three"},
			{"tag_name": "v3-rc", "body": "draft", "draft": true},
			{"tag_name": "v2", "body": "two"}
		]`))
	})

	notes, err := src.Releases(context.Background(), "acme/modeler", 3)

	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "v3", notes[0].Version)
	assert.Equal(t, "v2", notes[1].Version)
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Limit: 60}

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestAPIError_Unwrap(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: 404}, domain.ErrNotFound)
	assert.ErrorIs(t, &APIError{StatusCode: 401}, domain.ErrAuthInvalid)
	assert.NotErrorIs(t, &APIError{StatusCode: 500}, domain.ErrNotFound)
	assert.ErrorIs(t, &APIError{StatusCode: 403}, domain.ErrAuthInvalid)
}

func TestClient_QuotaPausesNearExhaustion(t *testing.T) {
	reset := time.Now().Add(time.Hour).Truncate(time.Second)
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "10")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v1.0.0", "body": "- fix"}`))
	})

	_, err := src.Fetch(context.Background(), "acme/modeler@v1.0.0")
	require.NoError(t, err)

	quota := src.client.Quota()
	assert.Equal(t, 5000, quota.Limit)
	assert.Equal(t, 10, quota.Remaining)
	assert.True(t, reset.Equal(quota.Reset.Time))
	assert.True(t, reset.Equal(src.client.throttle.PausedUntil()))
}

func TestClient_QuotaHealthyDoesNotPause(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v1.0.0", "body": "- fix"}`))
	})

	_, err := src.Fetch(context.Background(), "acme/modeler@v1.0.0")
	require.NoError(t, err)

	assert.True(t, src.client.throttle.PausedUntil().IsZero())
}
