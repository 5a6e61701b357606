package memdb

import (
	"github.com/flavorsense/flavorsense/core/review"
)

type reviewRepository struct {
	db *reviewTable
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db.reviews}
}

func (repo *reviewRepository) CreateRow(row review.Row) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, row)
	return nil
}

func (repo *reviewRepository) QueryAllRows() ([]review.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return append(make([]review.Row, 0, len(repo.db.rows)), repo.db.rows...), nil
}

func (repo *reviewRepository) UpdateRows(fn func(row *review.Row) bool) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var changed int
	for i := range repo.db.rows {
		if fn(&repo.db.rows[i]) {
			changed++
		}
	}
	return changed, nil
}
