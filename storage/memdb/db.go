// Package memdb keeps the student and review tables in memory. Nothing survives a restart.
package memdb

import (
	"sync"

	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
)

type (
	DB struct {
		students *studentTable
		reviews  *reviewTable
	}

	studentTable struct {
		rows  []student.Student
		mutex sync.RWMutex
	}

	reviewTable struct {
		rows  []review.Row
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		students: new(studentTable),
		reviews:  new(reviewTable),
	}
}
