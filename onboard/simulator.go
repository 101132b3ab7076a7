package onboard

import (
	"time"

	"github.com/CodedInternet/gotrifan/calcs"
)

const SIM_INTERVAL = time.Second / 10

// Simulator recomputes the altitude from the current setpoints on every
// cycle of its worker.
type Simulator struct {
	*Worker
	actuators *Actuators
	altimeter *Altimeter
	airframe  calcs.Airframe
	last      time.Time // only touched from the worker goroutine
}

func NewSimulator(actuators *Actuators, altimeter *Altimeter, airframe calcs.Airframe, interval time.Duration) (sim *Simulator) {
	sim = &Simulator{
		actuators: actuators,
		altimeter: altimeter,
		airframe:  airframe,
	}
	sim.Worker = NewWorker("simulator", interval, sim.update)
	return
}

func (s *Simulator) update(now time.Time) {
	dt := s.Interval().Seconds()
	if !s.last.IsZero() {
		dt = now.Sub(s.last).Seconds()
	}
	s.last = now

	state := s.actuators.Snapshot()
	rate := s.airframe.ClimbRate(state.Motors[:], float64(state.Tilt), float64(state.Elevons[0]))
	s.altimeter.climb(rate * dt)
}

// Status summarises the simulated observation for display next to the
// actuator status.
func (s *Simulator) Status() string {
	return s.altimeter.Status()
}
