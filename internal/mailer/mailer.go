package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"hostelx-service/internal/apperrors"
)

// Mailer sends transactional email. Delivery failures are always surfaced,
// never swallowed.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

// NewMailer builds an SMTP mailer, or a noop mailer when SMTP is not
// configured.
func NewMailer(addr, user, pass, from string) Mailer {
	if addr == "" {
		log.Printf("mailer disabled, using noop: empty smtp addr")
		return noopMailer{}
	}
	return &smtpMailer{addr: addr, user: user, pass: pass, from: from}
}

type smtpMailer struct {
	addr string
	user string
	pass string
	from string
}

func (m *smtpMailer) SendOTP(_ context.Context, to, code string) error {
	to = strings.ToLower(strings.TrimSpace(to))
	if to == "" || code == "" {
		return apperrors.Validation("email and code are required")
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your HostelX verification code\r\n\r\nYour HostelX verification code is %s. It will expire soon.\r\n",
		m.from, to, code)

	host := m.addr
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(body)); err != nil {
		return apperrors.EmailDelivery("failed to send verification email", err)
	}
	return nil
}

type noopMailer struct{}

func (noopMailer) SendOTP(_ context.Context, to, _ string) error {
	log.Printf("mailer noop send to=%s", to)
	return nil
}
