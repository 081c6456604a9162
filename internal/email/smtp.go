package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SMTPConfig addresses an authenticated submission server.
type SMTPConfig struct {
	Host        string // e.g. "smtp.gmail.com"
	Port        int    // 587 for STARTTLS, 465 for implicit TLS
	Username    string
	Password    string
	DialTimeout time.Duration // zero means 30s
}

// SMTPTransport delivers mail over SMTP with PLAIN auth. It opens a fresh
// connection per message.
type SMTPTransport struct {
	cfg SMTPConfig
	// tlsConfig is nil in production; tests override it to trust a local
	// server.
	tlsConfig *tls.Config
}

// NewSMTPTransport returns a transport for cfg. Nothing is dialled until Send
// or Verify.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Verify opens a session, authenticates and quits without sending.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	c, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Quit()
}

// Send transmits msg and returns the Message-ID it was stamped with.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("email: smtp: empty recipient")
	}

	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), t.cfg.Host)
	raw, err := buildMIME(msg, messageID)
	if err != nil {
		return "", err
	}

	c, err := t.dial(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if err := c.Mail(msg.From.Email); err != nil {
		return "", fmt.Errorf("email: smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("email: smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return "", fmt.Errorf("email: smtp DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return "", fmt.Errorf("email: smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("email: smtp end DATA: %w", err)
	}
	if err := c.Quit(); err != nil {
		return "", fmt.Errorf("email: smtp QUIT: %w", err)
	}
	return messageID, nil
}

// dial connects, upgrades to TLS and authenticates. The context bounds the
// whole session through its deadline on the connection.
func (t *SMTPTransport) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	dialer := &net.Dialer{Timeout: t.cfg.DialTimeout}

	tlsCfg := t.tlsConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12}
	}

	var conn net.Conn
	var err error
	if t.cfg.Port == 465 {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("email: smtp connect %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("email: smtp handshake: %w", err)
	}

	if t.cfg.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				c.Close()
				return nil, fmt.Errorf("email: smtp STARTTLS: %w", err)
			}
		}
	}

	if t.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			c.Close()
			return nil, fmt.Errorf("email: smtp server does not offer AUTH")
		}
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := c.Auth(auth); err != nil {
			c.Close()
			return nil, fmt.Errorf("email: smtp AUTH: %w", err)
		}
	}
	return c, nil
}

// ─── MIME ────────────────────────────────────────────────────────────────────

// buildMIME renders a multipart/alternative message with a text part (when
// present) followed by the HTML part.
func buildMIME(msg Message, messageID string) ([]byte, error) {
	var buf bytes.Buffer
	boundary := "=_" + uuid.NewString()[:16]

	fmt.Fprintf(&buf, "From: %s\r\n", msg.From.String())
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Message-ID: <%s>\r\n", messageID)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	parts := []struct{ ctype, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; charset=UTF-8\r\n", p.ctype)
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&buf)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("email: encode %s part: %w", p.ctype, err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("email: encode %s part: %w", p.ctype, err)
		}
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}
