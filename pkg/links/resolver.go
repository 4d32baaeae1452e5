// Package links resolves media and page references into displayable URLs and
// lists the pages link widgets can point at.
package links

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"
	urlkit "github.com/goliatone/go-urlkit"
)

const (
	// PagesBucket is the bucket link widgets resolve against.
	PagesBucket = "pages"
	pageGroup   = "pages"
	pageRoute   = "page"
	slugParam   = "slug"
)

// Page is a known link target.
type Page struct {
	Slug  string `json:"slug" yaml:"slug"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Resolver turns stored references into URLs.
type Resolver interface {
	ResolveReference(bucket, raw string) string
	ListKnownPages() []Page
}

// Options configures a URLKitResolver.
type Options struct {
	// BaseURL prefixes page links, e.g. https://example.com.
	BaseURL string
	// PagePath is the route template for pages; defaults to /:slug.
	PagePath string
	// Buckets maps media bucket names to their public base URL.
	Buckets map[string]string
	Pages   []Page
}

// URLKitResolver builds page URLs through a go-urlkit route manager and
// media URLs from per-bucket base URLs.
type URLKitResolver struct {
	manager *urlkit.RouteManager
	baseURL string
	buckets map[string]string

	mu    sync.RWMutex
	pages []Page
}

var _ Resolver = (*URLKitResolver)(nil)

// NewResolver constructs a resolver. Pages without a slug get one derived
// from their title.
func NewResolver(opts Options) (*URLKitResolver, error) {
	pagePath := strings.TrimSpace(opts.PagePath)
	if pagePath == "" {
		pagePath = "/:" + slugParam
	}
	if !strings.Contains(pagePath, ":"+slugParam) {
		return nil, fmt.Errorf("links: page path %q must contain :%s", pagePath, slugParam)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	r := &URLKitResolver{
		baseURL: baseURL,
		manager: urlkit.NewRouteManager(&urlkit.Config{
			Groups: []urlkit.GroupConfig{{
				Name:    pageGroup,
				BaseURL: baseURL,
				Paths:   map[string]string{pageRoute: pagePath},
			}},
		}),
		buckets: make(map[string]string, len(opts.Buckets)),
	}
	for name, base := range opts.Buckets {
		r.buckets[strings.TrimSpace(name)] = strings.TrimSpace(base)
	}
	for _, page := range opts.Pages {
		if err := r.AddPage(page); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AddPage registers a known page. Adding an existing slug replaces it.
func (r *URLKitResolver) AddPage(page Page) error {
	page.Title = strings.TrimSpace(page.Title)
	source := page.Slug
	if strings.TrimSpace(source) == "" {
		source = page.Title
	}
	normalized, err := slug.Normalize(source)
	if err != nil || normalized == "" {
		return fmt.Errorf("links: invalid page slug %q", source)
	}
	page.Slug = normalized
	if page.Title == "" {
		page.Title = normalized
	}
	page.URL = r.pageURL(normalized)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.pages {
		if r.pages[i].Slug == page.Slug {
			r.pages[i] = page
			return nil
		}
	}
	r.pages = append(r.pages, page)
	return nil
}

// ListKnownPages returns the known pages ordered by title.
func (r *URLKitResolver) ListKnownPages() []Page {
	r.mu.RLock()
	out := append([]Page(nil), r.pages...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// ResolveReference returns a displayable URL for raw. Absolute URLs,
// fragments and mailto/tel links pass through; page slugs go through the
// page route; media keys are joined onto their bucket base URL. Unresolvable
// values come back unchanged.
func (r *URLKitResolver) ResolveReference(bucket, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || isExternal(raw) {
		return raw
	}
	bucket = strings.TrimSpace(bucket)

	if bucket == PagesBucket {
		if strings.HasPrefix(raw, "/") {
			return r.joinBase(raw)
		}
		if slug.IsValid(raw) {
			if u := r.pageURL(raw); u != "" {
				return u
			}
		}
		return raw
	}

	base, ok := r.buckets[bucket]
	if !ok || base == "" {
		return raw
	}
	joined, err := url.JoinPath(base, strings.TrimLeft(raw, "/"))
	if err != nil {
		return raw
	}
	return joined
}

func (r *URLKitResolver) pageURL(pageSlug string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
		}
	}()
	built, err := r.manager.Group(pageGroup).Builder(pageRoute).WithParam(slugParam, pageSlug).Build()
	if err != nil {
		return ""
	}
	return built
}

func (r *URLKitResolver) joinBase(path string) string {
	if r.baseURL == "" {
		return path
	}
	return r.baseURL + path
}

func isExternal(raw string) bool {
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"http://", "https://", "//", "data:", "mailto:", "tel:", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
