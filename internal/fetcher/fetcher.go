// Package fetcher pulls user-configured external URLs into plain text the
// daily planning prompt can quote. Results are cached briefly so repeated
// cascade runs don't hammer the sources.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	defaultTTL       = 5 * time.Minute
	maxContentLength = 2000
)

// Source is one user-configured external URL with a note on why it matters.
type Source struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type cacheEntry struct {
	content   string
	fetchedAt time.Time
}

// Fetcher downloads and caches source content. The clock is injected so TTL
// expiry is testable.
type Fetcher struct {
	TTL    time.Duration
	Client *http.Client
	Now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func New() *Fetcher {
	return &Fetcher{
		TTL:    defaultTTL,
		Client: &http.Client{Timeout: 15 * time.Second},
		Now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

func stripHTML(html string) string {
	s := scriptRe.ReplaceAllString(html, "")
	s = styleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func isPDF(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".pdf") || strings.Contains(lower, ".pdf?")
}

// Fetch returns the (possibly cached) text content of url, truncated to keep
// the prompt small.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	if entry, ok := f.cache[url]; ok {
		if f.Now().Sub(entry.fetchedAt) <= f.TTL {
			f.mu.Unlock()
			return entry.content, nil
		}
		delete(f.cache, url)
	}
	f.mu.Unlock()

	if isPDF(url) {
		return "", errors.New("PDF sources are not supported")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	res, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch URL: %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	content := stripHTML(string(body))
	if len(content) > maxContentLength {
		content = content[:maxContentLength] + "\n... [content truncated]"
	}

	f.mu.Lock()
	f.cache[url] = cacheEntry{content: content, fetchedAt: f.Now()}
	f.mu.Unlock()

	return content, nil
}

// SourceContext fetches every source and formats the results as prompt
// context. A failing source is reported inline rather than failing the batch.
func (f *Fetcher) SourceContext(ctx context.Context, sources []Source) string {
	if len(sources) == 0 {
		return ""
	}

	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		content, err := f.Fetch(ctx, s.URL)
		if err != nil {
			parts = append(parts, fmt.Sprintf(
				"=== External Source (FAILED) ===\nURL: %s\nUser notes: %s\nError: %s",
				s.URL, s.Description, err.Error(),
			))
			continue
		}
		parts = append(parts, fmt.Sprintf(
			"=== External Source ===\nURL: %s\nUser notes: %s\nContent:\n%s",
			s.URL, s.Description, content,
		))
	}
	return strings.Join(parts, "\n\n")
}

// SourceLister exposes the configured sources (see internal/store settings).
type SourceLister interface {
	DynamicSources(ctx context.Context) ([]Source, error)
}

// ContextBuilder adapts Fetcher + settings into the planner's optional
// source-context dependency.
type ContextBuilder struct {
	Fetcher *Fetcher
	Sources SourceLister
}

func (b *ContextBuilder) DailyContext(ctx context.Context) (string, error) {
	sources, err := b.Sources.DynamicSources(ctx)
	if err != nil {
		return "", err
	}
	return b.Fetcher.SourceContext(ctx, sources), nil
}
