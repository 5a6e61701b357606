package reminder

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/review"
)

const (
	Subject      = "📢 Reminder: Rate today's mess on Flavorsense"
	templateName = "reminder"
)

// Summary tallies one reminder broadcast.
type Summary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

func (s Summary) String() string {
	msg := fmt.Sprintf("Reminders sent: %d", s.Sent)
	if s.Skipped > 0 {
		msg += fmt.Sprintf(" | Skipped (email not configured): %d", s.Skipped)
	}
	return msg
}

type (
	PendingLister interface {
		Pending(now time.Time) ([]review.Row, error)
	}

	MenuGetter interface {
		Get() menu.Menu
	}

	// Dispatcher emails today's menu to every student who has not reviewed today.
	Dispatcher struct {
		reviews PendingLister
		menu    MenuGetter
		mailer  core.EmailService
		logger  core.Logger
	}
)

func NewDispatcher(reviews PendingLister, board MenuGetter, mailer core.EmailService, logger core.Logger) *Dispatcher {
	return &Dispatcher{
		reviews: reviews,
		menu:    board,
		mailer:  mailer,
		logger:  logger,
	}
}

// SendReminders sends one reminder per pending row, sequentially. A failed send is counted as
// skipped and never aborts the loop. No review flag is modified.
func (d *Dispatcher) SendReminders() (Summary, error) {
	var sum Summary

	rows, err := d.reviews.Pending(review.NowFunc())
	if err != nil {
		return sum, err
	}

	today := d.menu.Get()
	for _, row := range rows {
		msg := &core.EmailMessage{
			To:           []mail.Address{{Address: row.Email}},
			Subject:      Subject,
			TemplateName: templateName,
			TemplateData: today,
		}
		if d.mailer.SendMessage(msg) {
			sum.Sent++
		} else {
			sum.Skipped++
		}
	}

	d.logger.Info(sum.String())
	return sum, nil
}
