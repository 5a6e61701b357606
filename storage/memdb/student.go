package memdb

import (
	"strings"

	"github.com/flavorsense/flavorsense/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.students}
}

func (repo *studentRepository) find(email string) (student.Student, bool) {
	for _, st := range repo.db.rows {
		if strings.EqualFold(st.Email, email) {
			return st, true
		}
	}
	return student.Student{}, false
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, found := repo.find(st.Email); found {
		return student.Student{}, student.ErrEmailExists
	}
	repo.db.rows = append(repo.db.rows, st)
	return st, nil
}

func (repo *studentRepository) AppendStudent(st student.Student) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, st)
	return nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return append(make([]student.Student, 0, len(repo.db.rows)), repo.db.rows...), nil
}

func (repo *studentRepository) Exists(email string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, found := repo.find(email)
	return found, nil
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, found := repo.find(email); found {
		return st, nil
	}
	return student.Student{}, student.ErrNotFound
}
