package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/mailx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

const (
	defaultDeliveryLimit = 50
	maxDeliveryLimit     = 200
)

type emailTemplate struct {
	name    string
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func mustTemplate(name, subject, html, text string) emailTemplate {
	return emailTemplate{
		name:    name,
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(html)),
		text:    texttemplate.Must(texttemplate.New(name + ".text").Parse(text)),
	}
}

var superAdminInviteTemplate = mustTemplate("super_admin_invite",
	`{{.InviterName}} invited you to become a platform administrator`,
	`<p>Hi,</p>
<p>{{.InviterName}} has invited you to join the platform control panel as a super administrator.</p>
<p><a href="{{.Link}}">Accept the invitation</a></p>
<p>This link expires on {{.ExpiresAt.Format "2 January 2006 15:04 MST"}}. If you were not expecting it you can ignore this email.</p>`,
	`Hi,

{{.InviterName}} has invited you to join the platform control panel as a super administrator.

Accept the invitation: {{.Link}}

This link expires on {{.ExpiresAt.Format "2 January 2006 15:04 MST"}}. If you were not expecting it you can ignore this email.
`)

var organizationInviteTemplate = mustTemplate("organization_invite",
	`You're invited to join {{.OrganizationName}}`,
	`<p>Hi{{if .Name}} {{.Name}}{{end}},</p>
<p>{{.InviterName}} has invited you to join <strong>{{.OrganizationName}}</strong> as {{.Role}}.</p>
<p><a href="{{.Link}}">Accept the invitation</a></p>
<p>This link expires on {{.ExpiresAt.Format "2 January 2006 15:04 MST"}}.</p>`,
	`Hi{{if .Name}} {{.Name}}{{end}},

{{.InviterName}} has invited you to join {{.OrganizationName}} as {{.Role}}.

Accept the invitation: {{.Link}}

This link expires on {{.ExpiresAt.Format "2 January 2006 15:04 MST"}}.
`)

// SuperAdminInviteEmail is the data rendered into a super admin invitation.
type SuperAdminInviteEmail struct {
	To          string
	InviterName string
	Link        string
	ExpiresAt   time.Time
}

// OrganizationInviteEmail is the data rendered into an organization invitation.
type OrganizationInviteEmail struct {
	To               string
	Name             string
	OrganizationName string
	Role             domain.Role
	InviterName      string
	Link             string
	ExpiresAt        time.Time
}

// Mailer renders transactional emails, hands them to the provider and keeps
// a delivery log. Sending is best effort: nothing it does fails the caller.
type Mailer struct {
	Store   store.Store
	Sender  mailx.Sender
	From    string
	ReplyTo string
	Now     func() time.Time
}

func (m *Mailer) SendSuperAdminInvite(ctx context.Context, data SuperAdminInviteEmail) {
	m.deliver(ctx, superAdminInviteTemplate, data.To, data)
}

func (m *Mailer) SendOrganizationInvite(ctx context.Context, data OrganizationInviteEmail) {
	m.deliver(ctx, organizationInviteTemplate, data.To, data)
}

// ListDeliveries returns the delivery log newest first.
func (m *Mailer) ListDeliveries(
	ctx context.Context,
	caller domain.Caller,
	status domain.DeliveryStatus,
	limit int,
) ([]domain.EmailDelivery, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalidField("status", "must be one of PENDING SENT FAILED")
	}

	deliveries, err := m.Store.EmailDeliveries().ListEmailDeliveries(ctx, status,
		clampLimit(limit, defaultDeliveryLimit, maxDeliveryLimit))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list email deliveries", slog.Any("error", err))
		return nil, err
	}
	return deliveries, nil
}

func (m *Mailer) deliver(ctx context.Context, tmpl emailTemplate, to string, data any) {
	if m == nil || m.Sender == nil {
		return
	}
	log := slogx.FromContext(ctx).With(
		slog.String("template", tmpl.name),
		slog.String("to", to),
	)

	// 1. Render
	msg, err := m.render(tmpl, to, data)
	if err != nil {
		log.Error("failed to render email", slog.Any("error", err))
		return
	}

	// 2. Record the attempt
	delivery := domain.EmailDelivery{
		ID:        idx.New().String(),
		Recipient: to,
		Subject:   msg.Subject,
		Template:  tmpl.name,
		Status:    domain.DeliveryPending,
		CreatedAt: clock(m.Now),
	}
	logged := true
	if err := m.Store.EmailDeliveries().CreateEmailDelivery(ctx, delivery); err != nil {
		log.Error("failed to record email delivery", slog.Any("error", err))
		logged = false
	}

	// 3. Hand off to the provider
	providerID, sendErr := m.Sender.Send(ctx, msg)
	if sendErr != nil {
		log.Error("failed to send email", slog.Any("error", sendErr))
	} else {
		log.Info("email sent", slog.String("provider_message_id", providerID))
	}

	if !logged {
		return
	}

	// 4. Close out the delivery row
	if sendErr != nil {
		err = m.Store.EmailDeliveries().MarkEmailFailed(ctx, delivery.ID, sendErr.Error())
	} else {
		err = m.Store.EmailDeliveries().MarkEmailSent(ctx, delivery.ID, providerID, clock(m.Now))
	}
	if err != nil {
		log.Error("failed to update email delivery",
			slog.String("delivery_id", delivery.ID),
			slog.Any("error", err),
		)
	}
}

func (m *Mailer) render(tmpl emailTemplate, to string, data any) (mailx.Message, error) {
	var subject, html, text bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return mailx.Message{}, fmt.Errorf("subject: %w", err)
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return mailx.Message{}, fmt.Errorf("html body: %w", err)
	}
	if err := tmpl.text.Execute(&text, data); err != nil {
		return mailx.Message{}, fmt.Errorf("text body: %w", err)
	}

	return mailx.Message{
		From:    m.From,
		To:      to,
		ReplyTo: m.ReplyTo,
		Subject: subject.String(),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
