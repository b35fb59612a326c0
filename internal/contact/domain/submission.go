package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errNullBody = errors.New("submission body must not be null")

// Submission is the contact form payload as posted by the site.
// It only lives for the duration of one request.
type Submission struct {
	Name      string
	Company   string
	Email     string
	Ambition  string
	Context   string
	Website   string
	Agreement bool

	// honeypot is true when the hidden website field carries any truthy value,
	// including non-string values a bot might post.
	honeypot bool
}

// UnmarshalJSON accepts loosely typed form bodies: non-string values for text
// fields are treated as absent so that they fail validation instead of decoding.
// A JSON array, string, number or boolean decodes as an empty submission; only
// null is an error.
func (s *Submission) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return errNullBody
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return errors.New("submission body is not valid JSON")
		}
		*s = Submission{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	*s = Submission{
		Name:      stringField(raw["name"]),
		Company:   stringField(raw["company"]),
		Email:     stringField(raw["email"]),
		Ambition:  stringField(raw["ambition"]),
		Context:   stringField(raw["context"]),
		Website:   stringField(raw["website"]),
		Agreement: truthy(raw["agreement"]),
		honeypot:  truthy(raw["website"]),
	}
	return nil
}

// HoneypotFilled reports whether the hidden field was filled in.
func (s Submission) HoneypotFilled() bool {
	return s.honeypot || s.Website != ""
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// truthy mirrors the loose checks browsers' form code relies on: true,
// non-zero numbers, non-empty strings, arrays and objects.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 't':
		return true
	case 'f', 'n':
		return false
	case '"':
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return false
		}
		return value != ""
	case '[', '{':
		return true
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && n != 0
	}
}
