package calcs

import "github.com/go-gl/mathgl/mgl64"

// Airframe holds the coefficients of the simplified lift model.
type Airframe struct {
	ClimbGain   float64 // altitude units per second, per RPM of surplus vertical force
	LiftRatio   float64 // wing lift generated per RPM of forward thrust
	ElevonGain  float64 // extra lift ratio per degree of elevon deflection
	StableSpeed float64 // RPM that holds altitude in hover
}

func MeanSpeed(speeds []int) float64 {
	if len(speeds) == 0 {
		return 0
	}

	var sum float64
	for _, s := range speeds {
		sum += float64(s)
	}

	return sum / float64(len(speeds))
}

// ThrustVector rotates the rotor axis about Y by the tilt angle.
// 0 degrees points straight up (Z), 90 degrees points forward (X).
func ThrustVector(rpm, tiltDeg float64) mgl64.Vec3 {
	rot := mgl64.Rotate3DY(mgl64.DegToRad(tiltDeg))
	return rot.Mul3x1(mgl64.Vec3{0, 0, rpm})
}

// VerticalForce combines direct rotor lift with the wing lift produced by
// forward thrust.
func (a Airframe) VerticalForce(speeds []int, tiltDeg, elevonDeg float64) float64 {
	thrust := ThrustVector(MeanSpeed(speeds), tiltDeg)
	lift := a.LiftRatio + a.ElevonGain*elevonDeg
	if lift < 0 {
		lift = 0
	}

	return thrust.Z() + thrust.X()*lift
}

// ClimbRate is positive while the airframe produces more vertical force than
// StableSpeed does in hover.
func (a Airframe) ClimbRate(speeds []int, tiltDeg, elevonDeg float64) float64 {
	return a.ClimbGain * (a.VerticalForce(speeds, tiltDeg, elevonDeg) - a.StableSpeed)
}
