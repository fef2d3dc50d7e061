package alerts

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/projecthub-dev/projecthub/internal/config"
)

var mailCfg config.MailConfig

// ConfigureMailer stores the delivery settings SendEmail routes on.
func ConfigureMailer(cfg config.MailConfig) {
	mailCfg = cfg
}

// SendEmail sends a plain text email via the configured provider. Bodies that
// look like HTML are sent with an HTML content type.
func SendEmail(to, subject, body string) error {
	if mailCfg.Provider == "plunk" {
		return sendViaPlunk(to, subject, body)
	}
	if mailCfg.SMTPHost == "" || mailCfg.SMTPPort == "" || mailCfg.From == "" {
		return fmt.Errorf("smtp not configured: set mail.smtp_host, mail.smtp_port, mail.from (or mail.provider=plunk)")
	}

	addr := mailCfg.SMTPHost + ":" + mailCfg.SMTPPort
	msg := ""
	msg += fmt.Sprintf("From: %s\r\n", mailCfg.From)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "MIME-Version: 1.0\r\n"
	contentType := "text/plain"
	lb := strings.ToLower(body)
	if strings.Contains(lb, "<html") || strings.Contains(lb, "<body") || strings.Contains(lb, "<!doctype html") {
		contentType = "text/html"
	}
	msg += fmt.Sprintf("Content-Type: %s; charset=\"utf-8\"\r\n", contentType)
	msg += "\r\n" + body + "\r\n"

	tlsConfig := &tls.Config{ServerName: mailCfg.SMTPHost}
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, mailCfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	auth := smtp.PlainAuth("", mailCfg.SMTPUsername, mailCfg.SMTPPassword, mailCfg.SMTPHost)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(mailCfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}
