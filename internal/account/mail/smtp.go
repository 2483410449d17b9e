package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sync"

	"github.com/tidehub/accountd/pkg/slogx"
)

//go:embed template/digit_code.html
var templateFS embed.FS

// SMTPDispatcher delivers digit-code emails over plain SMTP. The HTML
// template is parsed once at construction so a template defect fails
// the process at startup rather than on the first send.
type SMTPDispatcher struct {
	addr   string
	sender string
	auth   smtp.Auth
	tmpl   *template.Template

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPDispatcher builds a dispatcher for the given server address
// ("host:port") and sender address. auth may be nil for servers that
// accept unauthenticated relay (local dev).
func NewSMTPDispatcher(addr, sender string, auth smtp.Auth) (*SMTPDispatcher, error) {
	if addr == "" {
		return nil, errors.New("mail: smtp address must not be empty")
	}
	if sender == "" {
		return nil, errors.New("mail: sender address must not be empty")
	}
	tmpl, err := template.ParseFS(templateFS, "template/digit_code.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse digit code template: %w", err)
	}
	return &SMTPDispatcher{
		addr:   addr,
		sender: sender,
		auth:   auth,
		tmpl:   tmpl,
		send:   smtp.SendMail,
	}, nil
}

// SendDigitCode renders the template and delivers one message.
func (d *SMTPDispatcher) SendDigitCode(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := d.render(msg)
	if err != nil {
		return err
	}

	if err := d.send(d.addr, d.auth, d.sender, []string{msg.RecipientAddr}, body); err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.RecipientAddr, err)
	}

	slogx.FromContext(ctx).Debug("digit code email sent",
		slog.String("recipient", msg.RecipientAddr),
	)
	return nil
}

// SendDigitCodeBatch fans the messages out concurrently and joins any
// per-recipient failures.
func (d *SMTPDispatcher) SendDigitCodeBatch(ctx context.Context, msgs []Message) error {
	errs := make([]error, len(msgs))

	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = d.SendDigitCode(ctx, msg)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (d *SMTPDispatcher) render(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", d.sender)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.RecipientAddr)
	fmt.Fprintf(&buf, "Subject: Your verification code\r\n")
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	if err := d.tmpl.Execute(&buf, msg); err != nil {
		return nil, fmt.Errorf("mail: render digit code template: %w", err)
	}
	return buf.Bytes(), nil
}
