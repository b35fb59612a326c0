package journal

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/orsayn/site-api/internal/journal/domain"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// LegalPages are the low-priority pages published in every locale.
var LegalPages = []string{"mentions-legales", "confidentialite", "cgv", "plan-du-site"}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (h *Handler) entry(path, lastMod, freq string, priority float64) sitemapURL {
	return sitemapURL{
		Loc:        h.baseURL + path,
		LastMod:    lastMod,
		ChangeFreq: freq,
		Priority:   fmt.Sprintf("%.1f", priority),
	}
}

// buildSitemap lists home, journal index and annales per locale, then every
// article in every locale that publishes it, then the legal pages.
func (h *Handler) buildSitemap(byLocale map[domain.Locale][]domain.Article) urlSet {
	now := h.now().UTC().Format(time.RFC3339)
	set := urlSet{XMLNS: sitemapNamespace}

	for _, section := range []struct {
		suffix   string
		priority float64
	}{{"", 1.0}, {"/journal", 0.9}, {"/journal/annales", 0.7}} {
		for _, locale := range domain.SupportedLocales {
			set.URLs = append(set.URLs, h.entry("/"+string(locale)+section.suffix, now, "weekly", section.priority))
		}
	}

	articles := append([]domain.Article(nil), byLocale[domain.DefaultLocale]...)
	sort.SliceStable(articles, func(i, j int) bool { return articles[i].PublishDate.Before(articles[j].PublishDate) })
	for _, article := range articles {
		for _, locale := range domain.SupportedLocales {
			local, ok := findArticle(byLocale[locale], article.Slug)
			if !ok {
				continue
			}
			path := fmt.Sprintf("/%s/journal/%s", locale, local.Slug)
			set.URLs = append(set.URLs, h.entry(path, local.PublishDate.Format(time.DateOnly), "monthly", 0.8))
		}
	}

	for _, page := range LegalPages {
		for _, locale := range domain.SupportedLocales {
			set.URLs = append(set.URLs, h.entry("/"+string(locale)+"/"+page, now, "yearly", 0.3))
		}
	}
	return set
}

func findArticle(articles []domain.Article, slug string) (domain.Article, bool) {
	for _, a := range articles {
		if a.Slug == slug {
			return a, true
		}
	}
	return domain.Article{}, false
}

func (h *Handler) sitemapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		byLocale, err := h.articles.Locales(r.Context())
		if err != nil {
			h.logf("sitemap: %v", err)
			http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
			return
		}

		body, err := xml.MarshalIndent(h.buildSitemap(byLocale), "", "  ")
		if err != nil {
			h.logf("sitemap: encode: %v", err)
			http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write([]byte(xml.Header))
		_, _ = w.Write(body)
	}
}

func (h *Handler) robotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var b strings.Builder
		b.WriteString("User-Agent: *\n")
		b.WriteString("Allow: /\n")
		b.WriteString("Disallow: /api/\n")
		b.WriteString("Disallow: /_next/\n")
		b.WriteString("\n")
		fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", h.baseURL)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(b.String()))
	}
}
