// Package storage opens the repositories selected by the storage backend.
package storage

import (
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
	"github.com/flavorsense/flavorsense/storage/csvdb"
	"github.com/flavorsense/flavorsense/storage/memdb"
)

type Repositories struct {
	Students student.Repository
	Reviews  review.Repository
}

func Open(conf core.StorageConfig) (Repositories, error) {
	switch conf.Backend {
	case "csv", "":
		db, err := csvdb.Open(conf)
		if err != nil {
			return Repositories{}, err
		}
		return Repositories{
			Students: csvdb.NewStudentRepository(db),
			Reviews:  csvdb.NewReviewRepository(db),
		}, nil
	case "memory":
		db := memdb.Open()
		return Repositories{
			Students: memdb.NewStudentRepository(db),
			Reviews:  memdb.NewReviewRepository(db),
		}, nil
	default:
		return Repositories{}, errors.Errorf("unknown storage backend %q", conf.Backend)
	}
}
