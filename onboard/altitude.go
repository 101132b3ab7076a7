package onboard

import (
	"fmt"
	"sync"
)

type FlightMode string

const MODE_STABLE FlightMode = "stable"

// Altimeter holds the simulated altitude. Only the Simulator writes to it.
type Altimeter struct {
	lock     sync.RWMutex
	altitude float64
	mode     FlightMode
}

func NewAltimeter(mode FlightMode, altitude float64) *Altimeter {
	if altitude < 0 {
		altitude = 0
	}
	return &Altimeter{
		altitude: altitude,
		mode:     mode,
	}
}

func (a *Altimeter) Altitude() float64 {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.altitude
}

func (a *Altimeter) Mode() FlightMode {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.mode
}

func (a *Altimeter) Status() string {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return fmt.Sprintf("altitude=%.2f mode=%s", a.altitude, a.mode)
}

// climb applies delta and floors the result at ground level.
func (a *Altimeter) climb(delta float64) float64 {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.altitude += delta
	if a.altitude < 0 {
		a.altitude = 0
	}
	return a.altitude
}
