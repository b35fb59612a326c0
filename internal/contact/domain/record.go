package domain

import "time"

// RecordStatusNew is the initial status of every created record.
const RecordStatusNew = "Nouveau"

// Record is the structured business record created for an accepted submission.
type Record struct {
	Reference   string
	Name        string
	Company     string
	Email       string
	Ambition    string
	Context     string
	SubmittedAt time.Time
	Status      string
}

// NewRecord maps a sanitized submission onto the record store's properties.
func NewRecord(reference string, s SanitizedSubmission, submittedAt time.Time) Record {
	return Record{
		Reference:   reference,
		Name:        s.Name,
		Company:     s.Company,
		Email:       s.Email,
		Ambition:    CanonicalAmbition(s.Ambition),
		Context:     s.Context,
		SubmittedAt: submittedAt.UTC(),
		Status:      RecordStatusNew,
	}
}

// EmailMessage is a transactional email handed to the mailer.
type EmailMessage struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// FailedNotification is an email the mailer could not deliver.
type FailedNotification struct {
	Reference string
	Message   EmailMessage
	Err       string
	FailedAt  time.Time
}
