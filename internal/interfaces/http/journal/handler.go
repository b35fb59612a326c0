package journal

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orsayn/site-api/internal/interfaces/http/common"
	journalapp "github.com/orsayn/site-api/internal/journal/application"
	"github.com/orsayn/site-api/internal/journal/domain"
)

const (
	MessageArticleNotFound = "Article introuvable"
	MessageUnexpected      = "Une erreur est survenue."
)

// Handler serves the journal API and the crawler files.
type Handler struct {
	logger   *log.Logger
	articles journalapp.ArticleQueryService
	baseURL  string
	now      func() time.Time
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger   *log.Logger
	Articles journalapp.ArticleQueryService
	// BaseURL is the public site origin used in absolute URLs.
	BaseURL string
	Now     func() time.Time
}

func NewHandler(cfg Config) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		logger:   cfg.Logger,
		articles: cfg.Articles,
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		now:      now,
	}
}

// Register mounts the journal and crawler routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/journal", h.listHandler())
	r.Get("/api/journal/{slug}", h.detailHandler())
	r.Get("/sitemap.xml", h.sitemapHandler())
	r.Get("/robots.txt", h.robotsHandler())
}

type articleSummaryResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	PublishDate string `json:"publishDate"`
	ReadTime    string `json:"readTime"`
	Snippet     string `json:"snippet"`
	CTABenefit  string `json:"ctaBenefit"`
	CoverImage  string `json:"coverImage"`
}

type articleDetailResponse struct {
	articleSummaryResponse
	Content string `json:"content"`
}

type articleListResponse struct {
	Locale   string                   `json:"locale"`
	Articles []articleSummaryResponse `json:"articles"`
}

type articleResponse struct {
	Locale  string                `json:"locale"`
	Article articleDetailResponse `json:"article"`
}

func toSummaryResponse(a domain.Article) articleSummaryResponse {
	return articleSummaryResponse{
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		Tag:         string(a.Tag),
		PublishDate: a.PublishDate.Format(time.DateOnly),
		ReadTime:    a.ReadTime,
		Snippet:     a.Snippet,
		CTABenefit:  a.CTABenefit,
		CoverImage:  a.CoverImage,
	}
}

func (h *Handler) listHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := common.ResolveLocale(r)
		articles, err := h.articles.List(r.Context(), locale)
		if err != nil {
			h.logf("journal: list %s: %v", locale, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, MessageUnexpected)
			return
		}

		resp := articleListResponse{Locale: string(locale), Articles: make([]articleSummaryResponse, 0, len(articles))}
		for _, a := range articles {
			resp.Articles = append(resp.Articles, toSummaryResponse(a))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

func (h *Handler) detailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := common.ResolveLocale(r)
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))

		article, err := h.articles.Detail(r.Context(), locale, slug)
		if errors.Is(err, domain.ErrArticleNotFound) {
			common.WriteError(h.logger, w, http.StatusNotFound, MessageArticleNotFound)
			return
		}
		if err != nil {
			h.logf("journal: detail %s/%s: %v", locale, slug, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, MessageUnexpected)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, articleResponse{
			Locale: string(locale),
			Article: articleDetailResponse{
				articleSummaryResponse: toSummaryResponse(*article),
				Content:                article.Content,
			},
		})
	}
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
