package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const verificationSubject = "[Mentoring] 이메일 인증 코드"

// Sender delivers composed messages. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	sender Sender
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return NewSMTPMailerWithSender(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password))
}

func NewSMTPMailerWithSender(from string, sender Sender) *SMTPMailer {
	return &SMTPMailer{from: from, sender: sender}
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", verificationSubject)
	msg.SetBody("text/plain", verificationText(name, code))
	msg.AddAlternative("text/html", verificationHTML(name, code))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

// LogMailer writes the code to the log instead of sending mail. Used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(_ context.Context, to, _, code string) error {
	logrus.WithFields(logrus.Fields{
		"to":   to,
		"code": code,
	}).Debug("smtp disabled, verification code not mailed")
	return nil
}

func verificationText(name, code string) string {
	return fmt.Sprintf("%s님, 안녕하세요.\n\n인증 코드: %s\n\n앱에 코드를 입력해 이메일 인증을 완료해 주세요.\n", name, code)
}

func verificationHTML(name, code string) string {
	return fmt.Sprintf(
		"<p>%s님, 안녕하세요.</p><p>인증 코드: <strong>%s</strong></p><p>앱에 코드를 입력해 이메일 인증을 완료해 주세요.</p>",
		html.EscapeString(name),
		html.EscapeString(code),
	)
}
