package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
)

var (
	// errors
	ErrNotFound          = errors.New("student not found")
	ErrEmailExists       = errors.New("a student with this email already exists")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type (
	Repository interface {
		// CreateStudent appends st after checking, under the same lock, that its email is unused.
		CreateStudent(st Student) (Student, error)
		// AppendStudent appends st without any uniqueness check.
		AppendStudent(st Student) error
		QueryAllStudents() ([]Student, error)
		// Exists does a case-insensitive search on Student.Email.
		Exists(email string) (bool, error)
		GetStudentByEmail(email string) (Student, error)
	}

	// ReviewCreator creates the review row of a new student.
	ReviewCreator interface {
		CreateRow(email string) error
	}

	Service struct {
		repo       Repository
		reviews    ReviewCreator
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, reviews ReviewCreator, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		repo:       repo,
		reviews:    reviews,
		validate:   validate,
		translator: translator,
	}
}

// Register validates ns, creates the account and its review row.
func (svc *Service) Register(ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate, svc.translator); err != nil {
		return Student{}, err
	}

	// fail fast before hashing; CreateStudent checks again under the lock
	exists, err := svc.repo.Exists(ns.Email)
	if err != nil {
		return Student{}, err
	} else if exists {
		return Student{}, emailExistsError()
	}

	st := Student{Name: ns.Name, Email: ns.Email}
	if err = st.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	if st, err = svc.repo.CreateStudent(st); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Student{}, emailExistsError()
		}
		return Student{}, err
	}
	if err = svc.reviews.CreateRow(st.Email); err != nil {
		return Student{}, err
	}
	return st, nil
}

// Authenticate returns the student matching creds. Unknown emails and wrong passwords are
// returned as validation errors wrapping ErrNotFound and ErrIncorrectPassword.
func (svc *Service) Authenticate(creds Credentials) (Student, error) {
	if err := creds.Validate(svc.validate, svc.translator); err != nil {
		return Student{}, err
	}

	st, err := svc.repo.GetStudentByEmail(creds.Email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, core.NewValidationError(ErrNotFound, core.FieldError{Field: "email", Error: noAccountText})
		}
		return Student{}, err
	}
	if err = st.CheckPassword(creds.Password); err != nil {
		return Student{}, core.NewValidationError(ErrIncorrectPassword, core.FieldError{Field: "password", Error: incorrectPasswordText})
	}
	return st, nil
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) Exists(email string) (bool, error) {
	return svc.repo.Exists(core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByEmail(email string) (Student, error) {
	return svc.repo.GetStudentByEmail(core.CleanString(email, true /* lower */))
}

func emailExistsError() error {
	return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: emailExistsText})
}
