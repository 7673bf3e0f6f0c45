// Package mailer delivers account verification emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"jobvision/api/internal/config"
)

const verificationSubject = "Verify your JobVision account"

var verificationBody = template.Must(template.New("verification").Parse(`Hello,

Your verification code is: {{.Code}}

You can also confirm your address by opening this link:
{{.Link}}

- JobVision AI Team
`))

type verificationData struct {
	Code string
	Link string
}

// Message is a rendered email, independent of the transport.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender hands a rendered message to a transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Notifier struct {
	sender      Sender
	frontendURL string
	log         zerolog.Logger
}

func NewNotifier(sender Sender, frontendURL string, log zerolog.Logger) *Notifier {
	return &Notifier{
		sender:      sender,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		log:         log,
	}
}

func (n *Notifier) SendVerification(ctx context.Context, email string, code string) error {
	msg, err := n.RenderVerification(email, code)
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.log.Error().Err(err).Str("email", email).Msg("verification email failed")
		return fmt.Errorf("send verification email: %w", err)
	}

	n.log.Info().Str("email", email).Msg("verification email sent")
	return nil
}

func (n *Notifier) RenderVerification(email string, code string) (Message, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("code", code)

	var body bytes.Buffer
	if err := verificationBody.Execute(&body, verificationData{
		Code: code,
		Link: n.frontendURL + "/verify?" + query.Encode(),
	}); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	return Message{
		To:      email,
		Subject: verificationSubject,
		Body:    body.String(),
	}, nil
}

// SMTPSender sends through an authenticated SMTP relay. Every send dials
// a fresh connection bounded by the configured timeout.
type SMTPSender struct {
	cfg  config.MailConfig
	from string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{cfg: cfg, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}
