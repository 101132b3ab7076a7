package comms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CodedInternet/gotrifan/flightlog"
	"github.com/CodedInternet/gotrifan/onboard"
	ferrors "github.com/CodedInternet/gotrifan/onboard/errors"
)

const (
	SHUTDOWN_TIMEOUT = 5 * time.Second
	HISTORY_DEFAULT  = 5
)

var (
	errNoArchive = errors.New("history unavailable: no archive configured")
	errBadCount  = errors.New("history expects a positive count")
)

type StatusReporter interface {
	Status() string
}

type Landing interface {
	Land(ctx context.Context) error
}

type HistorySource interface {
	Recent(n int) ([]flightlog.Record, error)
}

// Task is a background worker the conductor owns for shutdown.
type Task interface {
	Name() string
	SignalStop()
	Wait(ctx context.Context) error
}

type handler func(ctx context.Context, cmd Cmd) error

// Conductor maps operator commands onto the actuators. Commands run one at a
// time on the caller's goroutine; land blocks until touchdown.
type Conductor struct {
	Simulator StatusReporter
	History   HistorySource

	actuators *onboard.Actuators
	lander    Landing
	setpoints onboard.SetpointConfig
	limits    onboard.LimitConfig
	out       io.Writer

	handlers map[CommandType]handler
	tasks    []Task

	shutdown sync.Once
	done     chan struct{}
}

func NewConductor(actuators *onboard.Actuators, lander Landing, config onboard.TrifanConfig, out io.Writer) (c *Conductor) {
	c = &Conductor{
		actuators: actuators,
		lander:    lander,
		setpoints: config.Setpoints,
		limits:    config.Limits,
		out:       out,
		done:      make(chan struct{}),
	}

	c.handlers = map[CommandType]handler{
		CMD_HELP:           c.help,
		CMD_SHUTDOWN:       func(ctx context.Context, _ Cmd) error { return c.Shutdown(ctx) },
		CMD_TAKEOFF:        c.simple(func() { actuators.UpdateMotors(c.setpoints.Takeoff) }),
		CMD_LAND:           func(ctx context.Context, _ Cmd) error { return c.lander.Land(ctx) },
		CMD_FORWARD_FLIGHT: c.simple(func() { actuators.TiltProps(onboard.TILT_FORWARD) }),
		CMD_ROTORS_FORWARD: c.simple(func() { actuators.AdjustTilt(c.setpoints.TiltStep, c.limits.Tilt) }),
		CMD_ROTORS_UP:      c.simple(func() { actuators.AdjustTilt(-c.setpoints.TiltStep, c.limits.Tilt) }),
		CMD_HOVER:          c.simple(func() { actuators.TiltProps(onboard.TILT_HOVER) }),
		CMD_ELVS_UP:        c.simple(func() { actuators.AdjustElevons(c.setpoints.ElevonStep, c.limits.Elevon) }),
		CMD_ELVS_DOWN:      c.simple(func() { actuators.AdjustElevons(-c.setpoints.ElevonStep, c.limits.Elevon) }),
		CMD_ELVS_LEVEL:     c.simple(func() { actuators.SetElevons(0) }),
		CMD_THROTTLE_UP:    c.simple(func() { actuators.AdjustMotors(c.setpoints.ThrottleStep, c.limits.MotorFloor) }),
		CMD_THROTTLE_DOWN:  c.simple(func() { actuators.AdjustMotors(-c.setpoints.ThrottleStep, c.limits.MotorFloor) }),
		CMD_GEAR_UP:        c.simple(func() { actuators.SetGearSrv(onboard.GEAR_STOWED) }),
		CMD_GEAR_DOWN:      c.simple(func() { actuators.SetGearSrv(onboard.GEAR_DEPLOYED) }),
		CMD_STATUS:         c.status,
		CMD_HISTORY:        c.history,
	}

	return
}

func (c *Conductor) simple(f func()) handler {
	return func(context.Context, Cmd) error {
		f()
		return nil
	}
}

// Attach hands background tasks to the conductor so shutdown can stop them.
func (c *Conductor) Attach(tasks ...Task) {
	c.tasks = append(c.tasks, tasks...)
}

// Execute parses and runs one operator line, printing any error the way the
// operator expects to see it.
func (c *Conductor) Execute(ctx context.Context, line string) error {
	fmt.Fprintf(c.out, "Executing Command: %s\n", strings.TrimSpace(line))

	cmd, err := ParseCmd(line)
	if err == nil {
		err = c.ProcessCommand(ctx, cmd)
	}

	var unknown ferrors.UnknownCommandError
	if errors.As(err, &unknown) {
		fmt.Fprintf(c.out, "%v\n\n", err)
		c.PrintHelp()
	} else if err != nil {
		fmt.Fprintln(c.out, err)
	}
	return err
}

func (c *Conductor) ProcessCommand(ctx context.Context, cmd Cmd) error {
	h, ok := c.handlers[cmd.Type]
	if !ok {
		return ferrors.UnknownCommandError{Token: string(cmd.Type)}
	}
	return h(ctx, cmd)
}

func (c *Conductor) PrintHelp() {
	fmt.Fprintln(c.out, HelpText())
}

func (c *Conductor) help(context.Context, Cmd) error {
	c.PrintHelp()
	return nil
}

// StatusText combines the actuator and simulator status lines.
func (c *Conductor) StatusText() string {
	status := c.actuators.Status()
	if c.Simulator != nil {
		status += "\n" + c.Simulator.Status()
	}
	return status
}

func (c *Conductor) status(context.Context, Cmd) error {
	fmt.Fprintln(c.out, c.StatusText())
	return nil
}

func (c *Conductor) history(_ context.Context, cmd Cmd) error {
	if c.History == nil {
		return errNoArchive
	}

	n := HISTORY_DEFAULT
	if len(cmd.Args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.Args[0]); err != nil || n <= 0 {
			return fmt.Errorf("%w, got %q", errBadCount, cmd.Args[0])
		}
	}

	records, err := c.History.Recent(n)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Fprintln(c.out, rec)
	}
	return nil
}

// Shutdown signals every attached task and then waits for each to exit.
// Only the first call does any work.
func (c *Conductor) Shutdown(ctx context.Context) (err error) {
	c.shutdown.Do(func() {
		fmt.Fprintln(c.out, "Aborting...")

		ctx, cancel := context.WithTimeout(ctx, SHUTDOWN_TIMEOUT)
		defer cancel()

		for _, t := range c.tasks {
			t.SignalStop()
		}
		for _, t := range c.tasks {
			if werr := t.Wait(ctx); werr != nil {
				err = errors.Join(err, werr)
			}
		}
		close(c.done)
	})
	return
}

// Done is closed once Shutdown has finished.
func (c *Conductor) Done() <-chan struct{} {
	return c.done
}
