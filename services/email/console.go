package emailsvc

import (
	"net/mail"
	"sync"
	"time"

	"github.com/flavorsense/flavorsense/core"
)

// ConsoleService writes messages to the log instead of sending them.
type ConsoleService struct {
	from          mail.Address
	logger        core.Logger
	disableOutput bool
	failFor       map[string]bool

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleService)(nil)

func NewConsoleService(conf *core.Config, logger core.Logger) *ConsoleService {
	return &ConsoleService{
		from:   fromAddress(conf),
		logger: logger,
	}
}

func (svc *ConsoleService) SendMessage(msg *core.EmailMessage) bool {
	if !prepare(msg, svc.logger) {
		return false
	}
	for _, to := range msg.Recipients() {
		if svc.failFor[to] {
			return false
		}
	}

	if !svc.disableOutput {
		data, err := msg.Bytes(svc.from, time.Now())
		if err != nil {
			svc.logger.Error("composing email: "+err.Error(), err)
			return false
		}
		svc.logger.Info(string(data))
	}

	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
	return true
}

// SentMessages returns the messages sent so far.
func (svc *ConsoleService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func (svc *ConsoleService) Reset() {
	svc.mu.Lock()
	svc.sent = nil
	svc.mu.Unlock()
}

// NewConsoleServiceMock returns a silent console service. Messages to any of failFor are
// reported as not sent.
func NewConsoleServiceMock(failFor ...string) *ConsoleService {
	svc := &ConsoleService{
		from:          mail.Address{Name: "Flavorsense", Address: "noreply@flavorsense.test"},
		logger:        nopLogger{},
		disableOutput: true,
		failFor:       make(map[string]bool, len(failFor)),
	}
	for _, addr := range failFor {
		svc.failFor[addr] = true
	}
	return svc
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
