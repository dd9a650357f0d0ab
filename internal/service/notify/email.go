package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"noveltycam/internal/config"
	"noveltycam/internal/model"
)

const (
	TLSImplicit = "implicit"
	TLSStartTLS = "starttls"
	TLSNone     = "none"

	smtpTimeout = 30 * time.Second
)

// EmailNotifier sends an alert email with the saved frame attached.
type EmailNotifier struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       []string
	tlsMode  string
	timeout  time.Duration
}

func NewEmailNotifier(cfg *config.Config) *EmailNotifier {
	var to []string
	for _, addr := range strings.Split(cfg.SMTPTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}

	return &EmailNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		to:       to,
		tlsMode:  cfg.SMTPTLS,
		timeout:  smtpTimeout,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, a *model.Alert) error {
	image, err := os.ReadFile(a.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to read alert image: %w", err)
	}

	msg, err := BuildMessage(n.from, n.to, a, filepath.Base(a.ImagePath), image)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

// Subject returns the subject line for an alert email.
func Subject(a *model.Alert) string {
	return "Alert: Objects Detected - " + strings.Join(a.Labels, ", ")
}

// Body returns the plain-text part of an alert email.
func Body(a *model.Alert) string {
	return fmt.Sprintf("New object(s) detected: %s\nImage saved at: %s", strings.Join(a.Labels, ", "), a.ImagePath)
}

// BuildMessage renders a multipart/mixed message with a text part and a JPEG attachment.
func BuildMessage(from string, to []string, a *model.Alert, filename string, image []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", Subject(a)))
	fmt.Fprintf(&msg, "Date: %s\r\n", a.Timestamp.Format(time.RFC1123Z))
	if a.ID != "" {
		fmt.Fprintf(&msg, "X-Alert-ID: %s\r\n", a.ID)
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	msg.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textHeader.Set("Content-Transfer-Encoding", "8bit")
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := part.Write([]byte(strings.ReplaceAll(Body(a), "\n", "\r\n"))); err != nil {
		return nil, fmt.Errorf("failed to write text part: %w", err)
	}

	imageHeader := textproto.MIMEHeader{}
	imageHeader.Set("Content-Type", "image/jpeg")
	imageHeader.Set("Content-Transfer-Encoding", "base64")
	imageHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	part, err = mw.CreatePart(imageHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}
	if _, err := part.Write(wrapBase64(image)); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}

	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// wrapBase64 encodes data in 76 character lines.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(encoded) > 76 {
		out.WriteString(encoded[:76])
		out.WriteString("\r\n")
		encoded = encoded[76:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return out.Bytes()
}

func (n *EmailNotifier) send(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(n.host, fmt.Sprint(n.port))
	tlsConfig := &tls.Config{
		ServerName: n.host,
		MinVersion: tls.VersionTLS12,
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var conn net.Conn
	var err error
	if n.tlsMode == TLSImplicit {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		dialer := &net.Dialer{}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if n.tlsMode == TLSStartTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if n.user != "" && n.password != "" {
		auth := smtp.PlainAuth("", n.user, n.password, n.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(n.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range n.to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once Data is closed.
	client.Quit()
	return nil
}
