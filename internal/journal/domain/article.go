package domain

import (
	"errors"
	"time"
)

// Locale identifies a content language.
type Locale string

const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"

	// DefaultLocale is served whenever a requested locale has no content.
	DefaultLocale = LocaleFR
)

// SupportedLocales lists locales with published content, default first.
var SupportedLocales = []Locale{LocaleFR, LocaleEN}

// Tag is the editorial category of an article.
type Tag string

const (
	TagStrategieFR Tag = "STRATÉGIE"
	TagIdentiteFR  Tag = "IDENTITÉ"
	TagInfluence   Tag = "INFLUENCE"
	TagStrategyEN  Tag = "STRATEGY"
	TagIdentityEN  Tag = "IDENTITY"
)

const (
	coverIdentity  = "/images/journal/identite-img.webp"
	coverStrategy  = "/images/journal/strategie-img-2.webp"
	coverInfluence = "/images/journal/influence-img.webp"
)

// CoverImageFor returns the cover image path used for articles tagged tag.
func CoverImageFor(tag Tag) string {
	switch tag {
	case TagIdentiteFR, TagIdentityEN:
		return coverIdentity
	case TagInfluence:
		return coverInfluence
	default:
		return coverStrategy
	}
}

// ErrArticleNotFound is returned when no article matches a slug.
var ErrArticleNotFound = errors.New("article not found")

// Article is one journal entry in a single locale. Slugs are shared across
// locales so that translations can be linked.
type Article struct {
	Slug        string
	Locale      Locale
	Title       string
	Description string
	Tag         Tag
	PublishDate time.Time
	ReadTime    string
	// Snippet and Content are trusted HTML authored with the site.
	Snippet    string
	CTABenefit string
	Content    string
	CoverImage string
}
