package rating

import (
	"sync"

	"github.com/pkg/errors"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")

// Store keeps every rating submitted since startup, by date then by item.
// Nothing is persisted: the store starts empty on every restart.
type Store struct {
	mu     sync.Mutex
	byDate map[string]map[string][]int // {date: {item: [ratings...]}}
}

func NewStore() *Store {
	return &Store{byDate: make(map[string]map[string][]int)}
}

// Record appends rating to the (date, item) entry, creating it if needed.
func (s *Store) Record(date, item string, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.byDate[date]
	if !ok {
		items = make(map[string][]int)
		s.byDate[date] = items
	}
	items[item] = append(items[item], rating)
	return nil
}

// ForDate returns a copy of the ratings recorded for date (an empty map if there is none).
func (s *Store) ForDate(date string) map[string][]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.byDate[date]
	res := make(map[string][]int, len(items))
	for item, ratings := range items {
		res[item] = append([]int(nil), ratings...)
	}
	return res
}
