package core

import (
	"bytes"
	"embed"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"
	"time"

	"github.com/pkg/errors"
)

//go:embed templates/email/*.txt
var emailFS embed.FS

var (
	templates map[string]*texttmpl.Template // {name: template}
	tmplErr   error
	tmplInit  sync.Once
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessage delivers msg synchronously. It reports whether the message was handed
		// to the transport; a message skipped for lack of configuration and a failed delivery
		// both return false (the reason is logged).
		SendMessage(msg *EmailMessage) bool
	}
)

// Render fills TextContent from BodyStr or from the named template.
func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplInit.Do(parseTemplates) // only execute once during first render
	if tmplErr != nil {
		return tmplErr
	}
	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return errors.Errorf("email template %q not found", m.TemplateName)
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering email template %q", m.TemplateName)
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" }

// Recipients returns the bare addresses of the message recipients.
func (m *EmailMessage) Recipients() []string {
	addrs := make([]string, 0, len(m.To))
	for _, a := range m.To {
		addrs = append(addrs, a.Address)
	}
	return addrs
}

// Bytes returns the RFC 5322 representation of the (rendered) message: a single
// UTF-8 text/plain part, quoted-printable encoded.
func (m *EmailMessage) Bytes(from mail.Address, date time.Time) ([]byte, error) {
	body := new(bytes.Buffer)

	to := make([]string, 0, len(m.To))
	for _, a := range m.To {
		to = append(to, a.String())
	}

	// Write mail header
	_, _ = fmt.Fprintf(body, "From: %s\r\n", from.String())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", strings.Join(to, ", "))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", date.Format(time.RFC1123Z))
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprint(body, "Content-Type: text/plain; charset=\"utf-8\"\r\n")
	_, _ = fmt.Fprint(body, "Content-Transfer-Encoding: quoted-printable\r\n")
	_, _ = fmt.Fprint(body, "\r\n")

	w := quotedprintable.NewWriter(body)
	if _, err := w.Write([]byte(m.TextContent)); err != nil {
		return nil, errors.Wrap(err, "encoding email body")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding email body")
	}
	return body.Bytes(), nil
}

func parseTemplates() {
	templates = make(map[string]*texttmpl.Template)

	fps, err := emailFS.ReadDir("templates/email")
	if err != nil {
		tmplErr = errors.Wrap(err, "core.parseTemplates")
		return
	}
	for _, fp := range fps {
		fname := fp.Name()
		if strings.HasPrefix(fname, "_") || path.Ext(fname) != ".txt" {
			continue
		}
		tmpl, err := texttmpl.New(fname).Option("missingkey=error").ParseFS(
			emailFS, "templates/email/_base.txt", "templates/email/"+fname,
		)
		if err != nil {
			tmplErr = errors.Wrap(err, "core.parseTemplates")
			return
		}
		templates[strings.TrimSuffix(fname, ".txt")] = tmpl.Lookup("base")
	}
}
