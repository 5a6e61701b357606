package review

import (
	"time"

	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
)

// NowFunc is mockable in tests.
var NowFunc = time.Now

type (
	Repository interface {
		CreateRow(row Row) error
		QueryAllRows() ([]Row, error)
		// UpdateRows reads every row, applies fn to each and rewrites the table if fn reported
		// a change for at least one row. The whole span runs under the table lock.
		// It returns the number of changed rows.
		UpdateRows(fn func(row *Row) bool) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRow creates the review row of a newly registered student.
func (svc *Service) CreateRow(email string) error {
	return svc.repo.CreateRow(NewRow(core.CleanString(email, true /* lower */)))
}

func (svc *Service) QueryAll() ([]Row, error) {
	return svc.repo.QueryAllRows()
}

// MarkTodayReviewed sets today's (UTC) flag to "yes" on every row of email.
// An unknown email is a no-op.
func (svc *Service) MarkTodayReviewed(email string) error {
	email = core.CleanString(email)
	idx := WeekdayIndex(NowFunc())
	_, err := svc.repo.UpdateRows(func(row *Row) bool {
		if !row.BelongsTo(email) || row.Flags[idx] == Yes {
			return false
		}
		row.Flags[idx] = Yes
		return true
	})
	return errors.Wrap(err, "marking today reviewed")
}

// Pending returns the rows that were not reviewed on now's UTC weekday.
func (svc *Service) Pending(now time.Time) ([]Row, error) {
	rows, err := svc.repo.QueryAllRows()
	if err != nil {
		return nil, err
	}
	pending := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !row.ReviewedOn(now) {
			pending = append(pending, row)
		}
	}
	return pending, nil
}

// ResetWeek sets every flag of every row to "no". It returns the number of rows that changed.
func (svc *Service) ResetWeek() (int, error) {
	n, err := svc.repo.UpdateRows(func(row *Row) bool {
		var changed bool
		for i, flag := range row.Flags {
			if flag != No {
				row.Flags[i] = No
				changed = true
			}
		}
		return changed
	})
	return n, errors.Wrap(err, "resetting review flags")
}
