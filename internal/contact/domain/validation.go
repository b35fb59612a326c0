package domain

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minNameRunes    = 2
	minCompanyRunes = 2
)

// Caller-visible validation messages.
const (
	MessageInvalidName      = "Nom invalide (minimum 2 caractères)"
	MessageInvalidCompany   = "Structure requise (minimum 2 caractères)"
	MessageInvalidEmail     = "Email invalide"
	MessageDisposableEmail  = "Veuillez utiliser une adresse email professionnelle"
	MessageMissingAmbition  = "Veuillez sélectionner une ambition"
	MessageMissingAgreement = "Vous devez accepter les conditions"
	MessageSpam             = "Spam détecté"
	MessageMalformedEmail   = "Format d'email invalide"
)

// Field names reported on ValidationError. The honeypot failure is reported
// under FieldForm so nothing in the error points at the hidden input.
const (
	FieldName      = "name"
	FieldCompany   = "company"
	FieldEmail     = "email"
	FieldAmbition  = "ambition"
	FieldAgreement = "agreement"
	FieldForm      = "form"
)

// ValidationError carries a single user-displayable rejection reason.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Validate checks the raw submission in a fixed order and reports the first
// failure only.
func (s Submission) Validate() *ValidationError {
	if utf8.RuneCountInString(s.Name) < minNameRunes {
		return invalid(FieldName, MessageInvalidName)
	}
	if utf8.RuneCountInString(s.Company) < minCompanyRunes {
		return invalid(FieldCompany, MessageInvalidCompany)
	}
	if !ValidEmail(s.Email) {
		return invalid(FieldEmail, MessageInvalidEmail)
	}
	if IsDisposableEmail(s.Email) {
		return invalid(FieldEmail, MessageDisposableEmail)
	}
	if s.Ambition == "" {
		return invalid(FieldAmbition, MessageMissingAmbition)
	}
	if !s.Agreement {
		return invalid(FieldAgreement, MessageMissingAgreement)
	}
	if s.HoneypotFilled() {
		return invalid(FieldForm, MessageSpam)
	}
	return nil
}

// ValidEmail reports whether value is a bare address (no display name) with a
// dotted domain, within the accepted length.
func ValidEmail(value string) bool {
	if value == "" || utf8.RuneCountInString(value) > MaxEmailRunes {
		return false
	}
	if strings.ContainsAny(value, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return false
	}

	at := strings.LastIndexByte(value, '@')
	if at <= 0 || at == len(value)-1 {
		return false
	}
	domain := value[at+1:]
	if strings.HasPrefix(domain, "[") {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return utf8.RuneCountInString(labels[len(labels)-1]) >= 2
}
