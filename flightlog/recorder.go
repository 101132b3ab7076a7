package flightlog

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/CodedInternet/gotrifan/onboard"
)

// Record is one status snapshot. The storm tags are used by Archive.
type Record struct {
	ID        int                   `storm:"id,increment" json:"id"`
	Time      time.Time             `storm:"index" json:"time"`
	Actuators onboard.ActuatorState `json:"actuators"`
	Altitude  float64               `json:"altitude"`
	Mode      onboard.FlightMode    `json:"mode"`
}

func (r Record) String() string {
	return fmt.Sprintf("%s mode=%s altitude=%.2f %s",
		r.Time.Format(time.RFC3339), r.Mode, r.Altitude, r.Actuators)
}

// Source captures the current state. Time is filled in by the caller.
type Source func() Record

func Capture(actuators *onboard.Actuators, altimeter *onboard.Altimeter) Source {
	return func() Record {
		return Record{
			Actuators: actuators.Snapshot(),
			Altitude:  altimeter.Altitude(),
			Mode:      altimeter.Mode(),
		}
	}
}

// Recorder is the append-only sink a StatusLogger writes to.
type Recorder interface {
	Append(rec Record) error
}

// FileLog appends one human readable line per record.
type FileLog struct {
	lock sync.Mutex
	file *os.File
}

func OpenFileLog(filename string) (*FileLog, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open flight log: %w", err)
	}

	return &FileLog{file: file}, nil
}

func (l *FileLog) Name() string {
	return l.file.Name()
}

func (l *FileLog) Append(rec Record) error {
	line := rec.String() + "\n"

	l.lock.Lock()
	defer l.lock.Unlock()
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("unable to write flight log: %w", err)
	}
	return nil
}

func (l *FileLog) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.file.Close()
}

// Fanout appends to every recorder and joins their errors.
type Fanout []Recorder

func (f Fanout) Append(rec Record) error {
	var errs []error
	for _, r := range f {
		if err := r.Append(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
