package services

import (
	"io"

	"gopkg.in/gomail.v2"
)

// Mailer is the outbound mail collaborator. Sends are synchronous and
// fail-fast; there is no internal retry.
type Mailer interface {
	SendPDF(to, subject, body string, attachment []byte, attachmentName string) error
}

// EmailService sends mail with a PDF attachment over SMTP.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(host string, port int, username, password, from string) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPDF sends a plain-text message with the given PDF attached.
func (s *EmailService) SendPDF(to, subject, body string, attachment []byte, attachmentName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.Attach(attachmentName,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)

	return s.dialer.DialAndSend(m)
}
