package common

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/orsayn/site-api/internal/journal/domain"
)

const (
	// LocaleParam and LangParam select a locale explicitly.
	LocaleParam = "locale"
	LangParam   = "lang"
	// LocaleCookieName stores the visitor's locale preference.
	LocaleCookieName = "locale"
)

var (
	supportedTags = func() []language.Tag {
		tags := make([]language.Tag, 0, len(domain.SupportedLocales))
		for _, l := range domain.SupportedLocales {
			tags = append(tags, language.Make(string(l)))
		}
		return tags
	}()
	localeMatcher = language.NewMatcher(supportedTags)
)

// parseLocale accepts tags such as "en", "en-GB" or "EN_us".
func parseLocale(value string) (domain.Locale, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "-")
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, l := range domain.SupportedLocales {
		if base.String() == string(l) {
			return l, true
		}
	}
	return "", false
}

// ResolveLocale picks the content locale for r: query parameter, cookie,
// Accept-Language, then the default locale.
func ResolveLocale(r *http.Request) domain.Locale {
	if r == nil {
		return domain.DefaultLocale
	}

	query := r.URL.Query()
	for _, param := range []string{LocaleParam, LangParam} {
		if l, ok := parseLocale(query.Get(param)); ok {
			return l
		}
	}

	if cookie, err := r.Cookie(LocaleCookieName); err == nil {
		if l, ok := parseLocale(cookie.Value); ok {
			return l
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := localeMatcher.Match(tags...)
			if confidence != language.No {
				return domain.SupportedLocales[index]
			}
		}
	}

	return domain.DefaultLocale
}
