package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/mail"
	"github.com/ogerihealth/healthrecord/internal/verification/entity"
	"go.opentelemetry.io/otel/codes"
)

const passwordResetHTML = `
<p>Hello {{.FullName}},</p>
<p>Use this code to reset your password:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.TTLMinutes}} minutes. If you did not request a
password reset, you can ignore this email.</p>
<p>Ogeri Health Foundation</p>`

const bpAuthorizationHTML = `
<p>Hello {{.FullName}},</p>
<p>A health worker asked to record a blood pressure reading on your behalf.
Share this code with them to authorize it:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.TTLMinutes}} minutes. If you are not at a clinic
right now, do not share this code with anyone.</p>
<p>Ogeri Health Foundation</p>`

type Mailer struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mailer {
	return &Mailer{client: client, ins: ins}
}

func (m *Mailer) SendCode(ctx context.Context, to entity.Account, p entity.Purpose, code string, ttl time.Duration) error {
	ctx, span := m.ins.Tracer("verification.outbound.mailer").Start(ctx, "SendCode")
	defer span.End()

	subject, body := "Your password reset code", passwordResetHTML
	if p == entity.PurposeBPAuthorization {
		subject, body = "Your blood pressure authorization code", bpAuthorizationHTML
	}

	html, err := renderTemplate(p.String(), body, map[string]any{
		"FullName":   to.FullName,
		"Code":       code,
		"TTLMinutes": int(ttl.Minutes()),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{to.Email},
		Subject:  subject,
		TextBody: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes())),
		HTMLBody: html,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func renderTemplate(name, body string, data map[string]any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
