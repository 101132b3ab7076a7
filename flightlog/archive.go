package flightlog

import (
	"errors"
	"fmt"

	"github.com/asdine/storm/v3"
)

// Archive keeps every record in a storm database so history can be queried
// after the text log has been rotated away.
type Archive struct {
	db *storm.DB
}

func OpenArchive(filename string) (a *Archive, err error) {
	db, err := storm.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive: %w", err)
	}

	if err = db.Init(&Record{}); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to init archive: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Append(rec Record) error {
	rec.ID = 0 // let storm assign the next id
	if err := a.db.Save(&rec); err != nil {
		return fmt.Errorf("unable to archive record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (a *Archive) Recent(n int) (records []Record, err error) {
	if n <= 0 {
		return nil, nil
	}

	err = a.db.All(&records, storm.Limit(n), storm.Reverse())
	if errors.Is(err, storm.ErrNotFound) {
		err = nil
	}
	return
}

func (a *Archive) Count() (int, error) {
	return a.db.Count(&Record{})
}

func (a *Archive) Close() error {
	return a.db.Close()
}
