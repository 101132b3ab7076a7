package onboard

import (
	"fmt"
	"strings"
	"sync"
)

const MOTOR_COUNT = 6

// Motor indexes follow the PX4 vtol tiltrotor output mapping.
const (
	MOTOR_FRONT_RIGHT_BOTTOM = iota
	MOTOR_FRONT_RIGHT_TOP
	MOTOR_BACK_BOTTOM
	MOTOR_BACK_TOP
	MOTOR_FRONT_LEFT_BOTTOM
	MOTOR_FRONT_LEFT_TOP
)

const (
	TILT_HOVER    = 0
	TILT_FORWARD  = 90
	GEAR_DEPLOYED = 0
	GEAR_STOWED   = 90
)

var motorNames = [MOTOR_COUNT]string{
	"front_right_bottom",
	"front_right_top",
	"back_bottom",
	"back_top",
	"front_left_bottom",
	"front_left_top",
}

// ActuatorState is a copy of every setpoint taken under a single lock.
type ActuatorState struct {
	Motors  [MOTOR_COUNT]int `json:"motors"`
	Tilt    int              `json:"tilt"`
	Elevons [2]int           `json:"elevons"`
	Gear    int              `json:"gear"`
}

func (s ActuatorState) String() string {
	var b strings.Builder
	for i, speed := range s.Motors {
		fmt.Fprintf(&b, "motor_%s=%d ", motorNames[i], speed)
	}
	fmt.Fprintf(&b, "tilt_servo=%d elevon_one=%d elevon_two=%d landing_gear=%d",
		s.Tilt, s.Elevons[0], s.Elevons[1], s.Gear)
	return b.String()
}

// Actuators owns the commanded setpoints. None of the absolute setters
// validate their input; range policy lives in the Adjust* helpers.
type Actuators struct {
	lock  sync.RWMutex
	state ActuatorState
}

// NewActuators starts in hover configuration with the gear deployed and the
// motors idle.
func NewActuators() *Actuators {
	return &Actuators{
		state: ActuatorState{
			Tilt: TILT_HOVER,
			Gear: GEAR_DEPLOYED,
		},
	}
}

func checkIndex(index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("index %d out of range [0,%d)", index, count)
	}
	return nil
}

// UpdateMotors drives all six motors to speed.
func (a *Actuators) UpdateMotors(speed int) {
	a.lock.Lock()
	defer a.lock.Unlock()
	for i := range a.state.Motors {
		a.state.Motors[i] = speed
	}
}

func (a *Actuators) SetMotor(index, speed int) (err error) {
	if err = checkIndex(index, MOTOR_COUNT); err != nil {
		return
	}

	a.lock.Lock()
	a.state.Motors[index] = speed
	a.lock.Unlock()
	return
}

func (a *Actuators) TiltProps(angle int) {
	a.lock.Lock()
	a.state.Tilt = angle
	a.lock.Unlock()
}

// SetElevons drives both elevons to the same angle.
func (a *Actuators) SetElevons(angle int) {
	a.lock.Lock()
	a.state.Elevons[0] = angle
	a.state.Elevons[1] = angle
	a.lock.Unlock()
}

func (a *Actuators) SetGearSrv(angle int) {
	a.lock.Lock()
	a.state.Gear = angle
	a.lock.Unlock()
}

func (a *Actuators) MotorSpeed(index int) (speed int, err error) {
	if err = checkIndex(index, MOTOR_COUNT); err != nil {
		return
	}

	a.lock.RLock()
	speed = a.state.Motors[index]
	a.lock.RUnlock()
	return
}

func (a *Actuators) TiltAngle() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.state.Tilt
}

func (a *Actuators) ElevonAngle(index int) (angle int, err error) {
	if err = checkIndex(index, len(a.state.Elevons)); err != nil {
		return
	}

	a.lock.RLock()
	angle = a.state.Elevons[index]
	a.lock.RUnlock()
	return
}

func (a *Actuators) GearAngle() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.state.Gear
}

func (a *Actuators) Snapshot() ActuatorState {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.state
}

func (a *Actuators) Status() string {
	return a.Snapshot().String()
}

// AdjustMotors reads motor 0 as the baseline and writes baseline+delta to
// every motor. The result never drops below floor.
func (a *Actuators) AdjustMotors(delta, floor int) int {
	a.lock.Lock()
	defer a.lock.Unlock()

	speed := a.state.Motors[MOTOR_FRONT_RIGHT_BOTTOM] + delta
	if speed < floor {
		speed = floor
	}
	for i := range a.state.Motors {
		a.state.Motors[i] = speed
	}
	return speed
}

// AdjustTilt nudges the tilt servo and clamps the result to r.
func (a *Actuators) AdjustTilt(delta int, r Range) int {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.state.Tilt = r.Clamp(a.state.Tilt + delta)
	return a.state.Tilt
}

// AdjustElevons nudges both elevons from the first elevon's angle and clamps
// the result to r.
func (a *Actuators) AdjustElevons(delta int, r Range) int {
	a.lock.Lock()
	defer a.lock.Unlock()

	angle := r.Clamp(a.state.Elevons[0] + delta)
	a.state.Elevons[0] = angle
	a.state.Elevons[1] = angle
	return angle
}
