package content

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orsayn/site-api/internal/journal/domain"
)

//go:embed articles.*.json
var files embed.FS

// ArticleDocument is the on-disk shape of one article.
type ArticleDocument struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	PublishDate string `json:"publishDate"`
	ReadTime    string `json:"readTime"`
	Snippet     string `json:"snippet"`
	CTABenefit  string `json:"ctaBenefit"`
	Content     string `json:"content"`
	CoverImage  string `json:"coverImage,omitempty"`
}

// ArticleRepository serves the articles embedded in the binary. Content is
// decoded once at construction and is read-only afterwards.
type ArticleRepository struct {
	byLocale map[domain.Locale][]domain.Article
}

// NewArticleRepository decodes the embedded content for every supported locale.
func NewArticleRepository() (*ArticleRepository, error) {
	repo := &ArticleRepository{byLocale: make(map[domain.Locale][]domain.Article)}
	for _, locale := range domain.SupportedLocales {
		raw, err := files.ReadFile(fmt.Sprintf("articles.%s.json", locale))
		if err != nil {
			return nil, fmt.Errorf("read %s articles: %w", locale, err)
		}
		articles, err := decodeArticles(locale, raw)
		if err != nil {
			return nil, err
		}
		repo.byLocale[locale] = articles
	}
	return repo, nil
}

func decodeArticles(locale domain.Locale, raw []byte) ([]domain.Article, error) {
	var docs []ArticleDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode %s articles: %w", locale, err)
	}

	seen := make(map[string]struct{}, len(docs))
	articles := make([]domain.Article, 0, len(docs))
	for _, doc := range docs {
		if doc.Slug == "" {
			return nil, fmt.Errorf("%s article without slug", locale)
		}
		if _, dup := seen[doc.Slug]; dup {
			return nil, fmt.Errorf("duplicate %s article slug %q", locale, doc.Slug)
		}
		seen[doc.Slug] = struct{}{}

		published, err := time.Parse(time.DateOnly, doc.PublishDate)
		if err != nil {
			return nil, fmt.Errorf("article %s: publish date: %w", doc.Slug, err)
		}
		articles = append(articles, toDomainArticle(locale, doc, published))
	}
	return articles, nil
}

func toDomainArticle(locale domain.Locale, doc ArticleDocument, published time.Time) domain.Article {
	tag := domain.Tag(doc.Tag)
	cover := doc.CoverImage
	if cover == "" {
		cover = domain.CoverImageFor(tag)
	}
	return domain.Article{
		Slug:        doc.Slug,
		Locale:      locale,
		Title:       doc.Title,
		Description: doc.Description,
		Tag:         tag,
		PublishDate: published,
		ReadTime:    doc.ReadTime,
		Snippet:     doc.Snippet,
		CTABenefit:  doc.CTABenefit,
		Content:     doc.Content,
		CoverImage:  cover,
	}
}

// FindAll returns a copy of the articles for locale, nil for an unknown locale.
func (r *ArticleRepository) FindAll(_ context.Context, locale domain.Locale) ([]domain.Article, error) {
	articles, ok := r.byLocale[locale]
	if !ok {
		return nil, nil
	}
	return append([]domain.Article(nil), articles...), nil
}
