package domain

import "strings"

// Ambition options stored in the record store's single-select field.
const (
	AmbitionFoundation = "Fondation"
	AmbitionAuthority  = "Autorité"
	AmbitionResonance  = "Résonance"
	AmbitionOther      = "Autre"
)

// AllowedAmbitions is the record store's option set.
var AllowedAmbitions = []string{AmbitionFoundation, AmbitionAuthority, AmbitionResonance, AmbitionOther}

// CanonicalAmbition maps the French and English form labels onto the option
// set. Anything unrecognised becomes AmbitionOther.
func CanonicalAmbition(input string) string {
	trimmed := strings.TrimSpace(input)
	switch strings.ToLower(trimmed) {
	case "fondation", "foundation", "1":
		return AmbitionFoundation
	case "autorité", "autorite", "authority", "2":
		return AmbitionAuthority
	case "résonance", "resonance", "3":
		return AmbitionResonance
	}
	return AmbitionOther
}
