package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(now *time.Time) *Fetcher {
	f := New()
	f.Now = func() time.Time { return *now }
	return f
}

func TestFetchStripsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><head>
			<style>body { color: red; }</style>
			<script>alert("nope");</script>
		</head><body><h1>Release   notes</h1><p>Version 2.0 is out.</p></body></html>`)
	}))
	defer srv.Close()

	now := time.Now()
	f := newTestFetcher(&now)

	content, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Release notes Version 2.0 is out.", content)
	assert.NotContains(t, content, "alert")
	assert.NotContains(t, content, "color: red")
}

func TestFetchCachesWithinTTL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, "payload")
	}))
	defer srv.Close()

	now := time.Now()
	f := newTestFetcher(&now)
	ctx := context.Background()

	_, err := f.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	_, err = f.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	// Past the TTL the entry expires and the source is hit again.
	now = now.Add(f.TTL + time.Second)
	_, err = f.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetchTruncatesLongContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("a", 5000))
	}))
	defer srv.Close()

	now := time.Now()
	f := newTestFetcher(&now)

	content, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(content, "[content truncated]"))
	assert.Len(t, content, maxContentLength+len("\n... [content truncated]"))
}

func TestFetchRejectsPDF(t *testing.T) {
	now := time.Now()
	f := newTestFetcher(&now)

	_, err := f.Fetch(context.Background(), "https://example.com/report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PDF")

	_, err = f.Fetch(context.Background(), "https://example.com/Report.PDF?dl=1")
	require.Error(t, err)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	now := time.Now()
	f := newTestFetcher(&now)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSourceContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<p>fresh news</p>")
	}))
	defer srv.Close()

	now := time.Now()
	f := newTestFetcher(&now)

	out := f.SourceContext(context.Background(), []Source{
		{URL: srv.URL, Description: "team news"},
		{URL: "https://example.com/dead.pdf", Description: "broken"},
	})

	assert.Contains(t, out, "=== External Source ===")
	assert.Contains(t, out, "User notes: team news")
	assert.Contains(t, out, "fresh news")
	// A failing source is reported inline, not dropped and not fatal.
	assert.Contains(t, out, "=== External Source (FAILED) ===")
	assert.Contains(t, out, "User notes: broken")
}

func TestSourceContextEmpty(t *testing.T) {
	now := time.Now()
	f := newTestFetcher(&now)
	assert.Equal(t, "", f.SourceContext(context.Background(), nil))
}

type staticSources struct {
	sources []Source
	err     error
}

func (s *staticSources) DynamicSources(ctx context.Context) ([]Source, error) {
	return s.sources, s.err
}

func TestContextBuilderDailyContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "headline")
	}))
	defer srv.Close()

	now := time.Now()
	b := &ContextBuilder{
		Fetcher: newTestFetcher(&now),
		Sources: &staticSources{sources: []Source{{URL: srv.URL, Description: "news"}}},
	}

	out, err := b.DailyContext(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "headline")
}

func TestContextBuilderNoSourcesConfigured(t *testing.T) {
	now := time.Now()
	b := &ContextBuilder{
		Fetcher: newTestFetcher(&now),
		Sources: &staticSources{},
	}

	out, err := b.DailyContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
