package journal

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orsayn/site-api/internal/infrastructure/content"
	journalapp "github.com/orsayn/site-api/internal/journal/application"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo, err := content.NewArticleRepository()
	if err != nil {
		t.Fatalf("NewArticleRepository: %v", err)
	}
	r := chi.NewRouter()
	NewHandler(Config{
		Articles: journalapp.NewArticleQueryService(repo),
		BaseURL:  "https://orsayn.com/",
		Now:      func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) },
	}).Register(r)
	return r
}

func get(h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	h := newTestRouter(t)

	rec := get(h, "/api/journal?locale=en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp articleListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Locale != "en" || len(resp.Articles) != 6 {
		t.Fatalf("locale = %s, articles = %d", resp.Locale, len(resp.Articles))
	}
	if resp.Articles[0].Slug != "luxe-du-silence" || resp.Articles[0].Tag != "IDENTITY" {
		t.Fatalf("newest article = %+v", resp.Articles[0])
	}
	for i := 1; i < len(resp.Articles); i++ {
		if resp.Articles[i-1].PublishDate < resp.Articles[i].PublishDate {
			t.Fatalf("articles not sorted newest first")
		}
	}
	if strings.Contains(rec.Body.String(), `"content"`) {
		t.Fatalf("list must not carry full content")
	}
}

func TestList_DefaultsToFrench(t *testing.T) {
	rec := get(newTestRouter(t), "/api/journal", map[string]string{"Accept-Language": "de-DE"})
	var resp articleListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Locale != "fr" || resp.Articles[0].Tag != "IDENTITÉ" {
		t.Fatalf("unexpected response %+v", resp.Locale)
	}
}

func TestDetail(t *testing.T) {
	h := newTestRouter(t)

	rec := get(h, "/api/journal/cabinet-comme-media", map[string]string{"Accept-Language": "en-US"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp articleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Locale != "en" || resp.Article.Content == "" || resp.Article.CoverImage != "/images/journal/strategie-img-2.webp" {
		t.Fatalf("unexpected article %+v", resp.Article.articleSummaryResponse)
	}

	rec = get(h, "/api/journal/absent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slug: status = %d", rec.Code)
	}
}

func TestSitemap(t *testing.T) {
	rec := get(newTestRouter(t), "/sitemap.xml", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("content type = %q", ct)
	}

	var set urlSet
	if err := xml.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 3 sections, 6 articles and 4 legal pages, each in 2 locales.
	if len(set.URLs) != 26 {
		t.Fatalf("urls = %d, want 26", len(set.URLs))
	}
	if set.URLs[0].Loc != "https://orsayn.com/fr" || set.URLs[0].Priority != "1.0" {
		t.Fatalf("first url = %+v", set.URLs[0])
	}

	byLoc := make(map[string]sitemapURL, len(set.URLs))
	for _, u := range set.URLs {
		byLoc[u.Loc] = u
	}
	article := byLoc["https://orsayn.com/en/journal/luxe-du-silence"]
	if article.LastMod != "2026-01-20" || article.Priority != "0.8" || article.ChangeFreq != "monthly" {
		t.Fatalf("article entry = %+v", article)
	}
	legal := byLoc["https://orsayn.com/fr/mentions-legales"]
	if legal.Priority != "0.3" || legal.ChangeFreq != "yearly" {
		t.Fatalf("legal entry = %+v", legal)
	}
	if byLoc["https://orsayn.com/en/journal/annales"].Priority != "0.7" {
		t.Fatalf("annales entry missing")
	}
}

func TestRobots(t *testing.T) {
	rec := get(newTestRouter(t), "/robots.txt", nil)
	body := rec.Body.String()
	for _, line := range []string{"User-Agent: *", "Allow: /", "Disallow: /api/", "Disallow: /_next/", "Sitemap: https://orsayn.com/sitemap.xml"} {
		if !strings.Contains(body, line+"\n") {
			t.Fatalf("robots.txt missing %q:\n%s", line, body)
		}
	}
}
