package mailer

import (
	"time"

	"github.com/oksasatya/go-ddd-rbac/pkg/mailer/templates"
)

// EmailJob is a rendered-on-demand notification for one recipient.
type EmailJob struct {
	To       string
	Template string
	Data     templates.NoticeData
}

// JobForEvent maps an audit event to the email it triggers. Events without a
// notification, or without a recipient, return false.
func JobForEvent(appName, eventType string, attrs map[string]any, at time.Time) (EmailJob, bool) {
	var tpl string
	switch eventType {
	case "user.created":
		tpl = templates.AccountCreated
	case "auth.login":
		tpl = templates.LoginNotice
	default:
		return EmailJob{}, false
	}
	email := stringAttr(attrs, "email")
	if email == "" {
		return EmailJob{}, false
	}
	return EmailJob{
		To:       email,
		Template: tpl,
		Data: templates.NoticeData{
			AppName: appName,
			Name:    stringAttr(attrs, "name"),
			Email:   email,
			Roles:   stringsAttr(attrs, "roles"),
			At:      at,
		},
	}, true
}

// Render produces subject, text and html bodies for the job.
func (j EmailJob) Render() (subject, text, html string, err error) {
	return templates.Render(j.Template, j.Data)
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

// stringsAttr accepts []string and the []any produced by JSON decoding.
func stringsAttr(attrs map[string]any, key string) []string {
	switch v := attrs[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
