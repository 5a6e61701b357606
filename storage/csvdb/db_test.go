package csvdb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
	"github.com/flavorsense/flavorsense/storage/csvdb"
	"github.com/flavorsense/flavorsense/tests"
)

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpen(t *testing.T) {
	conf := testutil.StorageConfig(t)
	conf.StudentsCSV = filepath.Join(filepath.Dir(conf.StudentsCSV), "nested", "dir", "students.csv")

	_, err := csvdb.Open(conf)
	require.NoError(t, err)

	assert.Equal(t, "name,email,password_hash\n", readFile(t, conf.StudentsCSV))
	assert.Equal(t, "email,Mon,Tue,Wed,Thu,Fri,Sat,Sun\n", readFile(t, conf.ReviewsCSV))

	// existing files are left untouched
	writeFile(t, conf.ReviewsCSV, "email,Mon,Tue,Wed,Thu,Fri,Sat,Sun\na@test.io,yes,no,no,no,no,no,no\n")
	_, err = csvdb.Open(conf)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, conf.ReviewsCSV), "a@test.io,yes")
}

func TestTablesRecreatedLazily(t *testing.T) {
	conf := testutil.StorageConfig(t)
	db, err := csvdb.Open(conf)
	require.NoError(t, err)
	require.NoError(t, os.Remove(conf.StudentsCSV))

	students, err := csvdb.NewStudentRepository(db).QueryAllStudents()
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Equal(t, "name,email,password_hash\n", readFile(t, conf.StudentsCSV))
}

func TestStudentRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := csvdb.NewStudentRepository(db)

	st, err := repo.CreateStudent(student.Student{Name: "Asha", Email: "asha@campus.edu", PasswordHash: []byte("$2a$10$hash")})
	require.NoError(t, err)
	assert.Equal(t, "Asha", st.Name)

	t.Run("duplicate email (any case)", func(t *testing.T) {
		_, err := repo.CreateStudent(student.Student{Name: "Other", Email: "ASHA@campus.edu"})
		assert.Equal(t, student.ErrEmailExists, err)
	})

	t.Run("append skips uniqueness", func(t *testing.T) {
		require.NoError(t, repo.AppendStudent(student.Student{Name: "Twin", Email: "asha@campus.edu"}))
		all, err := repo.QueryAllStudents()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.Exists("Asha@Campus.edu")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists("nobody@campus.edu")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("get by email returns the first match", func(t *testing.T) {
		got, err := repo.GetStudentByEmail("ASHA@CAMPUS.EDU")
		require.NoError(t, err)
		assert.Equal(t, "Asha", got.Name)
		assert.Equal(t, []byte("$2a$10$hash"), got.PasswordHash)

		_, err = repo.GetStudentByEmail("nobody@campus.edu")
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func TestReadByHeaderName(t *testing.T) {
	conf := testutil.StorageConfig(t)
	writeFile(t, conf.StudentsCSV, "email,password_hash,name\nravi@campus.edu,$2a$10$x,Ravi\n")
	writeFile(t, conf.ReviewsCSV, "Sun,email,Mon\nyes,ravi@campus.edu,no\n")

	db, err := csvdb.Open(conf)
	require.NoError(t, err)

	st, err := csvdb.NewStudentRepository(db).GetStudentByEmail("ravi@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", st.Name)

	rows, err := csvdb.NewReviewRepository(db).QueryAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ravi@campus.edu", rows[0].Email)
	assert.Equal(t, [7]string{"no", "", "", "", "", "", "yes"}, rows[0].Flags)

	// appends follow the file's column order
	_, err = csvdb.NewStudentRepository(db).CreateStudent(student.Student{Name: "Mei", Email: "mei@campus.edu", PasswordHash: []byte("h")})
	require.NoError(t, err)
	assert.Contains(t, readFile(t, conf.StudentsCSV), "mei@campus.edu,h,Mei\n")
}

func TestAppendWithoutTrailingNewline(t *testing.T) {
	conf := testutil.StorageConfig(t)
	writeFile(t, conf.StudentsCSV, "name,email,password_hash\nRavi,ravi@campus.edu,h")

	db, err := csvdb.Open(conf)
	require.NoError(t, err)
	repo := csvdb.NewStudentRepository(db)
	require.NoError(t, repo.AppendStudent(student.Student{Name: "Mei", Email: "mei@campus.edu", PasswordHash: []byte("h")}))

	all, err := repo.QueryAllStudents()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ravi@campus.edu", all[0].Email)
	assert.Equal(t, "mei@campus.edu", all[1].Email)
}

func TestAppendMissingColumn(t *testing.T) {
	conf := testutil.StorageConfig(t)
	const students = "name,email\nRavi,ravi@campus.edu\n"
	const reviews = "email,Mon\nravi@campus.edu,no\n"
	writeFile(t, conf.StudentsCSV, students)
	writeFile(t, conf.ReviewsCSV, reviews)

	db, err := csvdb.Open(conf)
	require.NoError(t, err)

	_, err = csvdb.NewStudentRepository(db).CreateStudent(student.Student{Name: "Mei", Email: "mei@campus.edu", PasswordHash: []byte("h")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "password_hash" missing from header`)
	assert.Equal(t, students, readFile(t, conf.StudentsCSV))

	err = csvdb.NewReviewRepository(db).CreateRow(review.NewRow("mei@campus.edu"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "Tue" missing from header`)
	assert.Equal(t, reviews, readFile(t, conf.ReviewsCSV))
}

func TestReviewRepository_UpdateRows(t *testing.T) {
	conf := testutil.StorageConfig(t)
	db, err := csvdb.Open(conf)
	require.NoError(t, err)
	repo := csvdb.NewReviewRepository(db)

	require.NoError(t, repo.CreateRow(review.NewRow("a@campus.edu")))
	require.NoError(t, repo.CreateRow(review.NewRow("b@campus.edu")))

	n, err := repo.UpdateRows(func(row *review.Row) bool {
		if row.Email != "b@campus.edu" {
			return false
		}
		row.Flags[2] = review.Yes
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t,
		"email,Mon,Tue,Wed,Thu,Fri,Sat,Sun\n"+
			"a@campus.edu,no,no,no,no,no,no,no\n"+
			"b@campus.edu,no,no,yes,no,no,no,no\n",
		readFile(t, conf.ReviewsCSV),
	)

	t.Run("no change, no rewrite", func(t *testing.T) {
		info, err := os.Stat(conf.ReviewsCSV)
		require.NoError(t, err)

		n, err := repo.UpdateRows(func(*review.Row) bool { return false })
		require.NoError(t, err)
		assert.Zero(t, n)

		info2, err := os.Stat(conf.ReviewsCSV)
		require.NoError(t, err)
		assert.True(t, os.SameFile(info, info2))
	})

	t.Run("rewrite canonicalizes the header", func(t *testing.T) {
		writeFile(t, conf.ReviewsCSV, "Sun,email\nno,a@campus.edu\n")
		n, err := repo.UpdateRows(func(row *review.Row) bool {
			row.Flags[0] = review.Yes
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, "email,Mon,Tue,Wed,Thu,Fri,Sat,Sun\na@campus.edu,yes,,,,,,no\n", readFile(t, conf.ReviewsCSV))
	})

	t.Run("no temp file left behind", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(conf.ReviewsCSV))
		require.NoError(t, err)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.ElementsMatch(t, []string{"students.csv", "reviews.csv"}, names)
	})
}
