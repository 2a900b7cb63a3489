package usecase

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<p>Hello {{.FullName}},</p>
<p>Welcome to the Ogeri Health Foundation. Your account is ready and you can
log in to view your health records at any time.</p>
<p>If you did not create this account, please contact us at
<a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
<p>Stay healthy,<br>The Ogeri Health Foundation team</p>
`))

type ConsumeUserRegistrationInput struct {
	UserID   string
	Email    string
	FullName string
	Role     string
}

// ConsumeUserRegistration sends the welcome email for a freshly registered
// account. Returning an error makes the broker redeliver the event.
func (s *Usecase) ConsumeUserRegistration(ctx context.Context, in ConsumeUserRegistrationInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistration")
	defer span.End()

	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, map[string]string{
		"FullName":     in.FullName,
		"SupportEmail": s.cfg.GetString("modules.notification.support_email"),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	if err := s.sendTracked(ctx, in.Email, "Welcome to Ogeri Health Foundation", body.String()); err != nil {
		slog.ErrorContext(ctx, "failed to send welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
