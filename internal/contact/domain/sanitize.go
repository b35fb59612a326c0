package domain

import (
	"regexp"
	"strings"
)

// Per-field caps applied after validation.
const (
	MaxNameRunes     = 100
	MaxCompanyRunes  = 150
	MaxEmailRunes    = 100
	MaxAmbitionRunes = 200
	MaxContextRunes  = 1000
)

var (
	newlineRun    = regexp.MustCompile(`\n{3,}`)
	angleBrackets = strings.NewReplacer("<", "", ">", "")
)

// SanitizedSubmission is the trimmed and length-bounded form of a Submission
// that is forwarded to the mailer and the record store.
type SanitizedSubmission struct {
	Name     string
	Company  string
	Email    string
	Ambition string
	Context  string
}

// Sanitize trims value, truncates it to maxRunes, strips '<' and '>' and
// collapses runs of three or more newlines into two.
func Sanitize(value string, maxRunes int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if maxRunes >= 0 {
		value = truncateRunes(value, maxRunes)
	}
	value = angleBrackets.Replace(value)
	return newlineRun.ReplaceAllString(value, "\n\n")
}

func truncateRunes(value string, maxRunes int) string {
	count := 0
	for i := range value {
		if count == maxRunes {
			return value[:i]
		}
		count++
	}
	return value
}

// Sanitize derives the forwarded form of s. The honeypot and the agreement
// flag are dropped: they only matter to validation.
func (s Submission) Sanitize() SanitizedSubmission {
	return SanitizedSubmission{
		Name:     Sanitize(s.Name, MaxNameRunes),
		Company:  Sanitize(s.Company, MaxCompanyRunes),
		Email:    Sanitize(s.Email, MaxEmailRunes),
		Ambition: Sanitize(s.Ambition, MaxAmbitionRunes),
		Context:  Sanitize(s.Context, MaxContextRunes),
	}
}

// Validate re-checks the email after sanitization since truncation and
// stripping may have altered it.
func (s SanitizedSubmission) Validate() *ValidationError {
	if !ValidEmail(s.Email) {
		return invalid(FieldEmail, MessageMalformedEmail)
	}
	return nil
}
