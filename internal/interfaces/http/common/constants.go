package common

const (
	// MaxContactRequestBody limits the JSON body accepted by the contact endpoint.
	MaxContactRequestBody = 64 << 10
	// MessageMethodNotAllowed is returned for unsupported methods.
	MessageMethodNotAllowed = "Méthode non autorisée"
	// MessageNotFound is returned for unknown resources.
	MessageNotFound = "Ressource introuvable"
)
