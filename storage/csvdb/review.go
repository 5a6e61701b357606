package csvdb

import (
	"github.com/flavorsense/flavorsense/core/review"
)

var reviewHeader = append([]string{"email"}, review.Weekdays[:]...)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

func toRow(rec []string) review.Row {
	row := review.Row{Email: rec[0]}
	copy(row.Flags[:], rec[1:])
	return row
}

func fromRow(row review.Row) []string {
	return append([]string{row.Email}, row.Flags[:]...)
}

func (repo *reviewRepository) query() ([]review.Row, error) {
	records, err := repo.db.reviews.readAll()
	if err != nil {
		return nil, err
	}
	rows := make([]review.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toRow(rec))
	}
	return rows, nil
}

func (repo *reviewRepository) CreateRow(row review.Row) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.db.reviews.append(fromRow(row))
}

func (repo *reviewRepository) QueryAllRows() ([]review.Row, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.query()
}

func (repo *reviewRepository) UpdateRows(fn func(row *review.Row) bool) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	rows, err := repo.query()
	if err != nil {
		return 0, err
	}

	var changed int
	records := make([][]string, 0, len(rows))
	for i := range rows {
		if fn(&rows[i]) {
			changed++
		}
		records = append(records, fromRow(rows[i]))
	}
	if changed == 0 {
		return 0, nil
	}
	if err = repo.db.reviews.rewrite(records); err != nil {
		return 0, err
	}
	return changed, nil
}
