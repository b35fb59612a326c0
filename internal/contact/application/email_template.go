package application

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/orsayn/site-api/internal/contact/domain"
)

var notificationTemplate = template.Must(template.New("notification").Parse(`<div style="font-family: 'Arial', sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #FFFAF1; color: #1A1A1A;">
  <h2 style="color: #1A1A1A; border-bottom: 2px solid #D4B35D; padding-bottom: 10px;">Nouvelle candidature Orsayn</h2>
  <div style="margin: 20px 0;">
    <p style="margin: 10px 0;"><strong>Identité :</strong> {{.Name}}</p>
    {{- if .Company}}
    <p style="margin: 10px 0;"><strong>Structure :</strong> {{.Company}}</p>
    {{- end}}
    <p style="margin: 10px 0;"><strong>Email :</strong> <a href="mailto:{{.Email}}" style="color: #D4B35D;">{{.Email}}</a></p>
    {{- if .Ambition}}
    <p style="margin: 10px 0;"><strong>Ambition :</strong> {{.Ambition}}</p>
    {{- end}}
    {{- if .Context}}
    <p style="margin: 10px 0;"><strong>Contexte :</strong></p>
    <div style="margin: 10px 0; padding: 15px; background-color: white; border-left: 3px solid #D4B35D; white-space: pre-wrap;">{{.Context}}</div>
    {{- end}}
  </div>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #D4B35D;">
    <p style="font-size: 12px; color: #666;">Candidature reçue depuis orsayn.com</p>
    <p style="font-size: 11px; color: #999;">IP: {{.ClientID}}</p>
    <p style="font-size: 11px; color: #999;">Réf: {{.Reference}}</p>
  </div>
</div>
`))

type notificationView struct {
	domain.SanitizedSubmission
	ClientID  string
	Reference string
}

// MailSettings holds the fixed envelope of the notification email.
type MailSettings struct {
	From string
	To   []string
}

// BuildNotification renders the notification sent for an accepted submission.
// The submitter's address is used as reply-to.
func BuildNotification(settings MailSettings, s domain.SanitizedSubmission, clientID, reference string) (domain.EmailMessage, error) {
	var body bytes.Buffer
	view := notificationView{SanitizedSubmission: s, ClientID: clientID, Reference: reference}
	if err := notificationTemplate.Execute(&body, view); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render notification: %w", err)
	}

	return domain.EmailMessage{
		From:    settings.From,
		To:      append([]string(nil), settings.To...),
		ReplyTo: s.Email,
		Subject: notificationSubject(s),
		HTML:    body.String(),
	}, nil
}

func notificationSubject(s domain.SanitizedSubmission) string {
	if s.Company == "" {
		return "Nouvelle candidature : " + s.Name
	}
	return fmt.Sprintf("Nouvelle candidature : %s (%s)", s.Name, s.Company)
}
