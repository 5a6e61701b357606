package emailsvc

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
)

// SMTPService sends messages through an SMTP relay, upgrading the connection with STARTTLS
// and authenticating with PLAIN.
type SMTPService struct {
	host      string
	port      int
	user      string
	password  string
	from      mail.Address
	timeout   time.Duration
	tlsConfig *tls.Config
	logger    core.Logger
}

var _ core.EmailService = (*SMTPService)(nil)

func NewSMTPService(conf *core.Config, logger core.Logger) *SMTPService {
	return &SMTPService{
		host:      conf.Email.Host,
		port:      conf.Email.Port,
		user:      conf.Email.User,
		password:  conf.Email.Password,
		from:      fromAddress(conf),
		timeout:   conf.Email.Timeout,
		tlsConfig: &tls.Config{ServerName: conf.Email.Host, MinVersion: tls.VersionTLS12},
		logger:    logger,
	}
}

func (svc *SMTPService) configured() bool {
	return svc.user != "" && svc.password != ""
}

// SendMessage returns false without dialing when no credentials are configured.
func (svc *SMTPService) SendMessage(msg *core.EmailMessage) bool {
	to := strings.Join(msg.Recipients(), ", ")
	if !svc.configured() {
		svc.logger.Warn(fmt.Sprintf("email not configured, skipping message to %s", to))
		return false
	}
	if !prepare(msg, svc.logger) {
		return false
	}

	data, err := msg.Bytes(svc.from, time.Now())
	if err == nil {
		err = svc.send(msg.Recipients(), data)
	}
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending email to %s: %v", to, err), err)
		return false
	}
	return true
}

func (svc *SMTPService) send(to []string, data []byte) error {
	addr := net.JoinHostPort(svc.host, strconv.Itoa(svc.port))
	conn, err := net.DialTimeout("tcp", addr, svc.timeout)
	if err != nil {
		return errors.Wrap(err, "smtp.dial")
	}
	if svc.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(svc.timeout))
	}

	c, err := smtp.NewClient(conn, svc.host)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "smtp.greeting")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return errors.New("smtp: server does not support STARTTLS")
	}
	if err = c.StartTLS(svc.tlsConfig); err != nil {
		return errors.Wrap(err, "smtp.starttls")
	}
	if err = c.Auth(smtp.PlainAuth("", svc.user, svc.password, svc.host)); err != nil {
		return errors.Wrap(err, "smtp.auth")
	}
	if err = c.Mail(svc.from.Address); err != nil {
		return errors.Wrap(err, "smtp.mail")
	}
	for _, rcpt := range to {
		if err = c.Rcpt(rcpt); err != nil {
			return errors.Wrapf(err, "smtp.rcpt(%s)", rcpt)
		}
	}

	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "smtp.data")
	}
	if _, err = w.Write(data); err != nil {
		return errors.Wrap(err, "smtp.data")
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "smtp.data")
	}
	return errors.Wrap(c.Quit(), "smtp.quit")
}
