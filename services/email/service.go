package emailsvc

import (
	"net/mail"

	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
)

// NewService returns the email backend selected by conf.Email.Backend.
func NewService(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	switch conf.Email.Backend {
	case "smtp":
		return NewSMTPService(conf, logger), nil
	case "sendgrid":
		return NewSendgridService(conf, logger), nil
	case "console":
		return NewConsoleService(conf, logger), nil
	default:
		return nil, errors.Errorf("unknown email backend %q", conf.Email.Backend)
	}
}

func fromAddress(conf *core.Config) mail.Address {
	return mail.Address{Name: conf.AppName, Address: conf.Email.From}
}

// prepare renders msg and reports whether there is anything to send.
func prepare(msg *core.EmailMessage, logger core.Logger) bool {
	if err := msg.Render(); err != nil {
		logger.Error("rendering email: "+err.Error(), err)
		return false
	}
	return msg.HasRecipients() && msg.HasContent()
}
