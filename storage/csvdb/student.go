package csvdb

import (
	"strings"

	"github.com/flavorsense/flavorsense/core/student"
)

var studentHeader = []string{"name", "email", "password_hash"}

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func toStudent(rec []string) student.Student {
	return student.Student{Name: rec[0], Email: rec[1], PasswordHash: []byte(rec[2])}
}

func fromStudent(st student.Student) []string {
	return []string{st.Name, st.Email, string(st.PasswordHash)}
}

func (repo *studentRepository) query() ([]student.Student, error) {
	records, err := repo.db.students.readAll()
	if err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(records))
	for _, rec := range records {
		students = append(students, toStudent(rec))
	}
	return students, nil
}

func (repo *studentRepository) find(email string) (student.Student, bool, error) {
	students, err := repo.query()
	if err != nil {
		return student.Student{}, false, err
	}
	for _, st := range students {
		if strings.EqualFold(st.Email, email) {
			return st, true, nil
		}
	}
	return student.Student{}, false, nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, found, err := repo.find(st.Email); err != nil {
		return student.Student{}, err
	} else if found {
		return student.Student{}, student.ErrEmailExists
	}
	if err := repo.db.students.append(fromStudent(st)); err != nil {
		return student.Student{}, err
	}
	return st, nil
}

func (repo *studentRepository) AppendStudent(st student.Student) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.db.students.append(fromStudent(st))
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.query()
}

func (repo *studentRepository) Exists(email string) (bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	_, found, err := repo.find(email)
	return found, err
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	st, found, err := repo.find(email)
	if err != nil {
		return student.Student{}, err
	} else if !found {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}
