package onboard

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/CodedInternet/gotrifan/onboard/errors"
)

const LANDING_POLL = time.Second

const LANDING_GUIDANCE = "Please return to hover, before attempting to land."

// LandingBand selects Speed while the altitude is strictly above Above.
type LandingBand struct {
	Above float64 `yaml:"above"`
	Speed int     `yaml:"speed"`
}

type AltitudeSource interface {
	Altitude() float64
}

type MotorControl interface {
	TiltAngle() int
	UpdateMotors(speed int)
}

// Lander walks the aircraft down through the landing bands. Land blocks the
// caller until the altitude reaches zero.
type Lander struct {
	motors   MotorControl
	altitude AltitudeSource
	bands    []LandingBand
	stable   int
	poll     time.Duration

	Out io.Writer
}

func NewLander(motors MotorControl, altitude AltitudeSource, bands []LandingBand, stable int, poll time.Duration) *Lander {
	sorted := make([]LandingBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Above > sorted[j].Above })

	if poll <= 0 {
		poll = LANDING_POLL
	}

	return &Lander{
		motors:   motors,
		altitude: altitude,
		bands:    sorted,
		stable:   stable,
		poll:     poll,
		Out:      io.Discard,
	}
}

// BandSpeed returns the motor setpoint for altitude, or the stable speed when
// no band covers it.
func (l *Lander) BandSpeed(altitude float64) int {
	for _, b := range l.bands {
		if altitude > b.Above {
			return b.Speed
		}
	}
	return l.stable
}

// Land requires hover configuration. It returns ctx.Err() if the context is
// cancelled mid-descent, leaving the last band setpoint applied.
func (l *Lander) Land(ctx context.Context) error {
	if l.motors.TiltAngle() != TILT_HOVER {
		return errors.TransitionError{Command: "land", Guidance: LANDING_GUIDANCE}
	}

	fmt.Fprintln(l.Out, "Landing...")

	timer := time.NewTimer(l.poll)
	defer timer.Stop()

	for {
		altitude := l.altitude.Altitude()
		if altitude <= 0 {
			break
		}

		speed := l.BandSpeed(altitude)
		l.motors.UpdateMotors(speed)
		fmt.Fprintf(l.Out, "Current Altitude: %.2f (motors %d)\n", altitude, speed)

		timer.Reset(l.poll)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.motors.UpdateMotors(l.stable)
	fmt.Fprintln(l.Out, "Landed.")
	return nil
}
