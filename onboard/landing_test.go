package onboard

import (
	"bytes"
	"context"
	. "github.com/smartystreets/goconvey/convey"
	"sync"
	"testing"
	"time"

	"github.com/CodedInternet/gotrifan/onboard/errors"
)

// scriptedAltitude returns each reading once and then repeats the last one.
type scriptedAltitude struct {
	lock     sync.Mutex
	readings []float64
}

func (s *scriptedAltitude) Altitude() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	alt := s.readings[0]
	if len(s.readings) > 1 {
		s.readings = s.readings[1:]
	}
	return alt
}

type recordingMotors struct {
	tilt     int
	commands []int
}

func (m *recordingMotors) TiltAngle() int {
	return m.tilt
}

func (m *recordingMotors) UpdateMotors(speed int) {
	m.commands = append(m.commands, speed)
}

func testBands() []LandingBand {
	return DefaultConfig().Setpoints.Bands
}

func TestLanderBands(t *testing.T) {
	Convey("band selection follows the altitude thresholds", t, func() {
		// deliberately unsorted
		bands := []LandingBand{{Above: 0, Speed: 2900}, {Above: 50, Speed: 2500}, {Above: 20, Speed: 2750}}
		l := NewLander(&recordingMotors{}, &scriptedAltitude{readings: []float64{0}}, bands, 3000, time.Millisecond)

		So(l.BandSpeed(60), ShouldEqual, 2500)
		So(l.BandSpeed(50.01), ShouldEqual, 2500)
		So(l.BandSpeed(50), ShouldEqual, 2750)
		So(l.BandSpeed(20.5), ShouldEqual, 2750)
		So(l.BandSpeed(20), ShouldEqual, 2900)
		So(l.BandSpeed(0.1), ShouldEqual, 2900)
		So(l.BandSpeed(0), ShouldEqual, 3000)
	})
}

func TestLand(t *testing.T) {
	Convey("landing outside hover is refused", t, func() {
		motors := &recordingMotors{tilt: 10}
		l := NewLander(motors, &scriptedAltitude{readings: []float64{60}}, testBands(), 3000, time.Millisecond)

		err := l.Land(context.Background())
		So(err, ShouldHaveSameTypeAs, errors.TransitionError{})
		So(err.Error(), ShouldEqual, LANDING_GUIDANCE)
		So(motors.commands, ShouldBeEmpty)
	})

	Convey("landing from hover steps through every band in order", t, func() {
		motors := &recordingMotors{}
		out := new(bytes.Buffer)
		l := NewLander(motors, &scriptedAltitude{readings: []float64{60, 45, 15, 0}}, testBands(), 3000, time.Millisecond)
		l.Out = out

		So(l.Land(context.Background()), ShouldBeNil)
		So(motors.commands, ShouldResemble, []int{2500, 2750, 2900, 3000})
		So(out.String(), ShouldStartWith, "Landing...")
		So(out.String(), ShouldContainSubstring, "Current Altitude: 45.00")
		So(out.String(), ShouldEndWith, "Landed.\n")
	})

	Convey("already on the ground goes straight to the stable speed", t, func() {
		motors := &recordingMotors{}
		l := NewLander(motors, &scriptedAltitude{readings: []float64{0}}, testBands(), 3000, time.Millisecond)

		So(l.Land(context.Background()), ShouldBeNil)
		So(motors.commands, ShouldResemble, []int{3000})
	})

	Convey("cancelling the context aborts the descent", t, func() {
		motors := &recordingMotors{}
		l := NewLander(motors, &scriptedAltitude{readings: []float64{100}}, testBands(), 3000, time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		So(l.Land(ctx), ShouldEqual, context.DeadlineExceeded)
		So(motors.commands, ShouldResemble, []int{2500})
	})
}

func TestLandWithSimulator(t *testing.T) {
	Convey("a simulated descent reaches the ground and settles at the stable speed", t, func() {
		config := DefaultConfig()
		config.Model.ClimbGain = 1 // fast descent keeps the test short
		config.Model.InitialAltitude = 60

		actuators := NewActuators()
		actuators.UpdateMotors(config.Setpoints.Stable)
		altimeter := NewAltimeter(MODE_STABLE, config.Model.InitialAltitude)
		sim := NewSimulator(actuators, altimeter, config.Airframe(), time.Millisecond)
		sim.Start(context.Background())
		defer sim.SignalStop()

		l := NewLander(actuators, altimeter, config.Setpoints.Bands, config.Setpoints.Stable, time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		So(l.Land(ctx), ShouldBeNil)
		So(altimeter.Altitude(), ShouldEqual, 0.0)
		speed, _ := actuators.MotorSpeed(MOTOR_BACK_TOP)
		So(speed, ShouldEqual, 3000)
	})
}
