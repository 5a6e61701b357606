package emailsvc

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/flavorsense/flavorsense/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// SendgridService sends messages through the SendGrid v3 API.
type SendgridService struct {
	key    string
	from   *sgmail.Email
	logger core.Logger
}

var _ core.EmailService = (*SendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *SendgridService {
	from := fromAddress(conf)
	return &SendgridService{
		key:    conf.Email.SendgridApiKey,
		from:   sgmail.NewEmail(from.Name, from.Address),
		logger: logger,
	}
}

// SendMessage returns false without calling the API when no key is configured.
func (svc *SendgridService) SendMessage(msg *core.EmailMessage) bool {
	to := strings.Join(msg.Recipients(), ", ")
	if svc.key == "" {
		svc.logger.Warn(fmt.Sprintf("sendgrid not configured, skipping message to %s", to))
		return false
	}
	if !prepare(msg, svc.logger) {
		return false
	}

	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(*msg))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending email to %s: %v", to, err), err)
		return false
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending email to %s - status: %d - Body: %s", to, res.StatusCode, res.Body))
		return false
	}
	return true
}

func (svc *SendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	return m
}
