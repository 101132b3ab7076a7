package onboard

import (
	"context"
	. "github.com/smartystreets/goconvey/convey"
	"testing"
	"time"
)

const count = 5

func newTestSimulator(altitude float64) (*Actuators, *Altimeter, *Simulator) {
	actuators := NewActuators()
	altimeter := NewAltimeter(MODE_STABLE, altitude)
	sim := NewSimulator(actuators, altimeter, DefaultConfig().Airframe(), kInterval)
	return actuators, altimeter, sim
}

func TestSimulatorUpdate(t *testing.T) {
	Convey("a single update integrates the climb rate", t, func() {
		actuators, altimeter, sim := newTestSimulator(10)
		actuators.UpdateMotors(3500)

		now := time.Now()
		sim.update(now)
		So(altimeter.Altitude(), ShouldAlmostEqual, 10+5*kInterval.Seconds(), 1e-9)

		Convey("and uses the elapsed time on later cycles", func() {
			sim.update(now.Add(time.Second))
			So(altimeter.Altitude(), ShouldAlmostEqual, 15+5*kInterval.Seconds(), 1e-9)
		})
	})

	Convey("idle motors fall but never below ground", t, func() {
		_, altimeter, sim := newTestSimulator(0.01)
		sim.update(time.Now())
		So(altimeter.Altitude(), ShouldEqual, 0.0)
	})

	Convey("the stable speed holds altitude", t, func() {
		actuators, altimeter, sim := newTestSimulator(42)
		actuators.UpdateMotors(3000)
		sim.update(time.Now())
		So(altimeter.Altitude(), ShouldAlmostEqual, 42, 1e-9)
	})
}

func TestSimulatorWorker(t *testing.T) {
	Convey("takeoff climbs while the simulator runs", t, func() {
		actuators, altimeter, sim := newTestSimulator(0)
		actuators.UpdateMotors(3500)
		sim.Start(context.Background())

		time.Sleep(kInterval * count)
		So(altimeter.Altitude(), ShouldBeGreaterThan, 0)

		Convey("and stops climbing once stopped", func() {
			sim.SignalStop()
			So(sim.Wait(context.Background()), ShouldBeNil)

			frozen := altimeter.Altitude()
			time.Sleep(kInterval * 2)
			So(altimeter.Altitude(), ShouldEqual, frozen)
		})
	})

	Convey("status reports altitude and mode", t, func() {
		_, _, sim := newTestSimulator(12.5)
		So(sim.Status(), ShouldEqual, "altitude=12.50 mode=stable")
	})
}

func TestAltimeter(t *testing.T) {
	Convey("negative starting altitudes are floored", t, func() {
		So(NewAltimeter(MODE_STABLE, -3).Altitude(), ShouldEqual, 0.0)
	})

	Convey("mode is reported as given", t, func() {
		So(NewAltimeter(MODE_STABLE, 0).Mode(), ShouldEqual, MODE_STABLE)
	})
}
