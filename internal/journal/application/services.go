package application

import (
	"context"
	"sort"

	"github.com/orsayn/site-api/internal/journal/domain"
)

// ArticleRepository abstracts read access to journal articles.
type ArticleRepository interface {
	FindAll(ctx context.Context, locale domain.Locale) ([]domain.Article, error)
}

// ArticleQueryService describes journal read use-cases.
type ArticleQueryService interface {
	List(ctx context.Context, locale domain.Locale) ([]domain.Article, error)
	Detail(ctx context.Context, locale domain.Locale, slug string) (*domain.Article, error)
	// Locales returns every supported locale with its articles, for sitemaps.
	Locales(ctx context.Context) (map[domain.Locale][]domain.Article, error)
}

func NewArticleQueryService(repo ArticleRepository) ArticleQueryService {
	return &articleQueryService{repo: repo}
}

type articleQueryService struct {
	repo ArticleRepository
}

// List returns the articles of locale newest first. A locale without content
// falls back to the default locale.
func (s *articleQueryService) List(ctx context.Context, locale domain.Locale) ([]domain.Article, error) {
	articles, err := s.repo.FindAll(ctx, locale)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 && locale != domain.DefaultLocale {
		articles, err = s.repo.FindAll(ctx, domain.DefaultLocale)
		if err != nil {
			return nil, err
		}
	}

	sorted := append([]domain.Article(nil), articles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishDate.After(sorted[j].PublishDate)
	})
	return sorted, nil
}

func (s *articleQueryService) Detail(ctx context.Context, locale domain.Locale, slug string) (*domain.Article, error) {
	articles, err := s.List(ctx, locale)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].Slug == slug {
			article := articles[i]
			return &article, nil
		}
	}
	return nil, domain.ErrArticleNotFound
}

func (s *articleQueryService) Locales(ctx context.Context) (map[domain.Locale][]domain.Article, error) {
	out := make(map[domain.Locale][]domain.Article, len(domain.SupportedLocales))
	for _, locale := range domain.SupportedLocales {
		articles, err := s.List(ctx, locale)
		if err != nil {
			return nil, err
		}
		out[locale] = articles
	}
	return out, nil
}
