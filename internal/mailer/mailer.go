// Package mailer sends account notification email. Without SMTP credentials
// it simulates delivery by logging a plain-text preview.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const (
	welcomeSubject = "Welcome to VentureMind.AI – Let's Build the Future"
	previewLimit   = 500
	defaultSender  = "noreply@venturemind.ai"
)

type Config struct {
	Server   string
	Port     int
	User     string
	Password string
	Sender   string
	// AppURL is linked from the welcome email.
	AppURL  string
	Timeout time.Duration
}

type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Sender == "" {
		cfg.Sender = defaultSender
	}
	if cfg.AppURL == "" {
		cfg.AppURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{cfg: cfg, logger: logger.With("component", "mailer")}
}

func (m *Mailer) simulated() bool {
	return m.cfg.Server == "" || m.cfg.User == "" || m.cfg.Password == ""
}

// SendWelcome emails a newly registered user.
func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	body, err := renderWelcome(welcomeData{Name: name, AppURL: m.cfg.AppURL})
	if err != nil {
		return err
	}

	if m.simulated() {
		m.logger.Info("simulated email",
			"to", to,
			"subject", welcomeSubject,
			"preview", Preview(body, previewLimit))
		return nil
	}

	msg := buildMessage(m.cfg.Sender, to, welcomeSubject, body)
	if err := m.send(ctx, to, msg); err != nil {
		return fmt.Errorf("sending welcome email: %w", err)
	}
	m.logger.Info("email sent", "to", to, "subject", welcomeSubject)
	return nil
}

func (m *Mailer) send(ctx context.Context, to string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Server, strconv.Itoa(m.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Server)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Server}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Server)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(m.cfg.Sender); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(htmlBody, "\n", "\r\n"))
	return b.Bytes()
}

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy
)

// Preview reduces an HTML body to at most limit runes of readable text.
func Preview(body string, limit int) string {
	stripOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	// Keep line structure the strict policy would otherwise collapse.
	r := strings.NewReplacer("<br>", "\n", "</p>", "\n", "</li>", "\n", "</h1>", "\n", "</h3>", "\n")
	text := html.UnescapeString(stripPolicy.Sanitize(r.Replace(body)))

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	text = strings.Join(lines, "\n")

	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}
