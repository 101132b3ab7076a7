package flightlog

import (
	"bytes"
	"context"
	"errors"
	. "github.com/smartystreets/goconvey/convey"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/CodedInternet/gotrifan/onboard"
)

const kInterval = 20 * time.Millisecond

type memoryRecorder struct {
	lock    sync.Mutex
	records []Record
	fail    error
}

func (m *memoryRecorder) Append(rec Record) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRecorder) Records() []Record {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]Record(nil), m.records...)
}

func newTestLogger(recorder Recorder, out *bytes.Buffer) (*onboard.Actuators, *StatusLogger) {
	actuators := onboard.NewActuators()
	altimeter := onboard.NewAltimeter(onboard.MODE_STABLE, 0)
	logger := log.New(out, "", 0)
	return actuators, NewStatusLogger(Capture(actuators, altimeter), recorder, kInterval, logger)
}

func TestStatusLogger(t *testing.T) {
	Convey("one record is appended per interval", t, func() {
		recorder := new(memoryRecorder)
		_, s := newTestLogger(recorder, new(bytes.Buffer))
		s.Start(context.Background())

		time.Sleep(kInterval*5 + kInterval/2)
		s.SignalStop()

		// first record at start plus one per tick
		So(len(recorder.Records()), ShouldBeBetweenOrEqual, 4, 7)
		So(int(s.Written()), ShouldEqual, len(recorder.Records()))

		records := recorder.Records()
		for i := 1; i < len(records); i++ {
			So(records[i].Time.Sub(records[i-1].Time), ShouldBeGreaterThan, kInterval/2)
		}
	})

	Convey("records reflect the setpoints current at each cycle", t, func() {
		recorder := new(memoryRecorder)
		actuators, s := newTestLogger(recorder, new(bytes.Buffer))
		s.Start(context.Background())
		defer s.SignalStop()

		time.Sleep(kInterval / 2)
		actuators.UpdateMotors(3500)
		actuators.SetGearSrv(onboard.GEAR_STOWED)
		time.Sleep(kInterval * 2)

		records := recorder.Records()
		So(records[0].Actuators.Motors[0], ShouldEqual, 0)
		latest := records[len(records)-1]
		So(latest.Actuators.Motors, ShouldResemble, [onboard.MOTOR_COUNT]int{3500, 3500, 3500, 3500, 3500, 3500})
		So(latest.Actuators.Gear, ShouldEqual, onboard.GEAR_STOWED)
		So(latest.Mode, ShouldEqual, onboard.MODE_STABLE)
	})

	Convey("nothing is appended after SignalStop", t, func() {
		recorder := new(memoryRecorder)
		_, s := newTestLogger(recorder, new(bytes.Buffer))
		s.Start(context.Background())

		time.Sleep(kInterval * 2)
		s.SignalStop()
		stopped := len(recorder.Records())

		ctx, cancel := context.WithTimeout(context.Background(), kInterval*2)
		defer cancel()
		So(s.Wait(ctx), ShouldBeNil)

		time.Sleep(kInterval * 3)
		So(len(recorder.Records()), ShouldEqual, stopped)
	})

	Convey("write failures are reported and do not stop the logger", t, func() {
		recorder := &memoryRecorder{fail: errors.New("disk full")}
		out := new(bytes.Buffer)
		_, s := newTestLogger(recorder, out)
		s.Start(context.Background())

		time.Sleep(kInterval*2 + kInterval/2)
		s.SignalStop()
		s.Wait(context.Background())

		So(s.Failed(), ShouldBeGreaterThanOrEqualTo, 2)
		So(int(s.Written()), ShouldEqual, 0)
		So(out.String(), ShouldContainSubstring, "disk full")
	})
}

func TestFanout(t *testing.T) {
	Convey("every recorder receives the record and errors are joined", t, func() {
		good := new(memoryRecorder)
		bad := &memoryRecorder{fail: errors.New("boom")}

		err := Fanout{bad, good}.Append(Record{Altitude: 3})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "boom")
		So(good.Records(), ShouldHaveLength, 1)

		So(Fanout{good}.Append(Record{}), ShouldBeNil)
	})
}
