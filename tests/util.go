package testutil

import (
	"path/filepath"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/rating"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
	"github.com/flavorsense/flavorsense/storage/csvdb"
)

// StorageConfig returns table paths inside a fresh temp dir.
func StorageConfig(t *testing.T) core.StorageConfig {
	dir := t.TempDir()
	return core.StorageConfig{
		Backend:     "csv",
		StudentsCSV: filepath.Join(dir, "students.csv"),
		ReviewsCSV:  filepath.Join(dir, "reviews.csv"),
	}
}

// OpenDB opens a CSV database inside a fresh temp dir.
func OpenDB(t *testing.T) *csvdb.DB {
	db, err := csvdb.Open(StorageConfig(t))
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with every app validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	student.InitValidators(validate, translator)
	rating.InitValidators(validate, translator)
	return validate, translator
}

// CreateStudent stores a student (and its review row) directly, bypassing validation.
func CreateStudent(t *testing.T, db *csvdb.DB, name, email, pwd string) student.Student {
	st := student.Student{Name: name, Email: email}
	if pwd != "" {
		if err := st.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
	st, err := csvdb.NewStudentRepository(db).CreateStudent(st)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if err = csvdb.NewReviewRepository(db).CreateRow(review.NewRow(email)); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}
