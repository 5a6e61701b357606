package csvdb

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
)

const filePerm = 0o644

type (
	// DB stores the students and reviews tables as CSV files.
	// One lock serializes every access to both tables, held for whole read-modify-write spans.
	DB struct {
		mu       sync.Mutex
		students *table
		reviews  *table
	}

	table struct {
		path   string
		header []string // canonical column order
	}
)

// Open creates both tables (with their header row) if they do not exist yet.
func Open(conf core.StorageConfig) (*DB, error) {
	db := &DB{
		students: &table{path: conf.StudentsCSV, header: studentHeader},
		reviews:  &table{path: conf.ReviewsCSV, header: reviewHeader},
	}
	for _, t := range []*table{db.students, db.reviews} {
		if err := t.ensure(); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// ensure creates the table file and its parent directories if absent.
func (t *table) ensure() error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "csvdb.stat(%s)", t.path)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return errors.Wrapf(err, "csvdb.mkdir(%s)", t.path)
	}
	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return errors.Wrapf(err, "csvdb.create(%s)", t.path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write(t.header)
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrapf(err, "csvdb.writeHeader(%s)", t.path)
	}
	return errors.Wrapf(f.Close(), "csvdb.close(%s)", t.path)
}

// readAll returns every record of the table in canonical column order.
// Columns are located by header name; a missing column reads as "".
func (t *table) readAll() ([][]string, error) {
	if err := t.ensure(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, errors.Wrapf(err, "csvdb.read(%s)", t.path)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	fileHeader, err := r.Read()
	if err == io.EOF {
		return [][]string{}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "csvdb.parse(%s)", t.path)
	}
	cols := t.columns(fileHeader)

	records := make([][]string, 0)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "csvdb.parse(%s)", t.path)
		}
		row := make([]string, len(t.header))
		for i, col := range cols {
			if col >= 0 && col < len(rec) {
				row[i] = rec[col]
			}
		}
		records = append(records, row)
	}
	return records, nil
}

// columns maps each canonical column to its index in fileHeader (-1 if missing).
func (t *table) columns(fileHeader []string) []int {
	pos := make(map[string]int, len(fileHeader))
	for i, name := range fileHeader {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	cols := make([]int, len(t.header))
	for i, name := range t.header {
		if col, ok := pos[name]; ok {
			cols[i] = col
		} else {
			cols[i] = -1
		}
	}
	return cols
}

// append adds one record (in canonical order) at the end of the table, following the
// column order of the file's own header.
func (t *table) append(rec []string) error {
	if err := t.ensure(); err != nil {
		return err
	}
	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_APPEND, filePerm)
	if err != nil {
		return errors.Wrapf(err, "csvdb.open(%s)", t.path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	fileHeader, err := csv.NewReader(f).Read()
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "csvdb.parse(%s)", t.path)
	}

	buff := new(bytes.Buffer)
	if err == io.EOF { // empty file
		fileHeader = t.header
		buff.WriteString(strings.Join(t.header, ",") + "\n")
	} else if !endsWithNewline(f) {
		buff.WriteByte('\n')
	}

	// a column missing from the file header would lose its value on append
	row := make([]string, len(fileHeader))
	for i, col := range t.columns(fileHeader) {
		if col < 0 {
			return errors.Errorf("csvdb.append(%s): column %q missing from header", t.path, t.header[i])
		}
		row[col] = rec[i]
	}
	w := csv.NewWriter(buff)
	_ = w.Write(row)
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrapf(err, "csvdb.encode(%s)", t.path)
	}

	if _, err = f.Write(buff.Bytes()); err != nil {
		return errors.Wrapf(err, "csvdb.append(%s)", t.path)
	}
	return errors.Wrapf(f.Close(), "csvdb.close(%s)", t.path)
}

// rewrite replaces the whole table with records, written in canonical order.
func (t *table) rewrite(records [][]string) error {
	buff := new(bytes.Buffer)
	w := csv.NewWriter(buff)
	_ = w.Write(t.header)
	_ = w.WriteAll(records) // flushes
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "csvdb.encode(%s)", t.path)
	}
	return errors.Wrapf(writeFileAtomic(t.path, buff.Bytes(), filePerm), "csvdb.rewrite(%s)", t.path)
}

func endsWithNewline(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return true
	}
	last := make([]byte, 1)
	if _, err = f.ReadAt(last, info.Size()-1); err != nil {
		return true
	}
	return last[0] == '\n'
}

// writeFileAtomic writes data to a temp file in the same directory, syncs it then renames it
// over path, so readers only ever see the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	//goland:noinspection GoUnhandledErrorResult
	defer d.Close()
	_ = d.Sync() // not supported on every platform
	return nil
}
