package flightlog

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/CodedInternet/gotrifan/onboard"
)

const STATUS_INTERVAL = 3 * time.Second

// StatusLogger appends one snapshot per interval. Write failures are
// reported and counted; the logger keeps running.
type StatusLogger struct {
	*onboard.Worker
	capture  Source
	recorder Recorder
	logger   *log.Logger

	written uint64
	failed  uint64
}

func NewStatusLogger(capture Source, recorder Recorder, interval time.Duration, logger *log.Logger) (s *StatusLogger) {
	if logger == nil {
		logger = log.Default()
	}

	s = &StatusLogger{
		capture:  capture,
		recorder: recorder,
		logger:   logger,
	}
	s.Worker = onboard.NewWorker("status logger", interval, s.cycle)
	return
}

func (s *StatusLogger) cycle(now time.Time) {
	rec := s.capture()
	rec.Time = now

	if err := s.recorder.Append(rec); err != nil {
		atomic.AddUint64(&s.failed, 1)
		s.logger.Printf("[status][error] %v", err)
		return
	}
	atomic.AddUint64(&s.written, 1)
}

func (s *StatusLogger) Written() uint64 {
	return atomic.LoadUint64(&s.written)
}

func (s *StatusLogger) Failed() uint64 {
	return atomic.LoadUint64(&s.failed)
}
