package comms

import (
	"fmt"
	"strings"

	"github.com/CodedInternet/gotrifan/onboard/errors"
)

type CommandType string

const (
	CMD_HELP           CommandType = "help"
	CMD_SHUTDOWN       CommandType = "shutdown"
	CMD_TAKEOFF        CommandType = "takeoff"
	CMD_LAND           CommandType = "land"
	CMD_FORWARD_FLIGHT CommandType = "forward_flight"
	CMD_ROTORS_FORWARD CommandType = "rotors_forward"
	CMD_ROTORS_UP      CommandType = "rotors_up"
	CMD_HOVER          CommandType = "hover"
	CMD_ELVS_UP        CommandType = "elvs_up"
	CMD_ELVS_DOWN      CommandType = "elvs_down"
	CMD_ELVS_LEVEL     CommandType = "elvs_level"
	CMD_THROTTLE_UP    CommandType = "throttle_up"
	CMD_THROTTLE_DOWN  CommandType = "throttle_down"
	CMD_GEAR_UP        CommandType = "gear_up"
	CMD_GEAR_DOWN      CommandType = "gear_down"
	CMD_STATUS         CommandType = "status"
	CMD_HISTORY        CommandType = "history"
)

// COMMANDS lists every command in help order.
var COMMANDS = []struct {
	Type CommandType
	Help string
}{
	{CMD_HELP, "print this message"},
	{CMD_SHUTDOWN, "stop the background tasks and exit"},
	{CMD_TAKEOFF, "turn motors up to gain hover altitude"},
	{CMD_LAND, "turn motors down to shed hover altitude"},
	{CMD_FORWARD_FLIGHT, "flip propellors to 90deg (forward)"},
	{CMD_ROTORS_FORWARD, "nudge propellors towards forward flight"},
	{CMD_ROTORS_UP, "nudge propellors towards hover"},
	{CMD_HOVER, "flip props to 0 (hover)"},
	{CMD_ELVS_UP, "nudge angle of elevons for climb"},
	{CMD_ELVS_DOWN, "nudge angle of elevons for dive"},
	{CMD_ELVS_LEVEL, "snap elevons to neutral"},
	{CMD_THROTTLE_UP, "turn motors up by one throttle step"},
	{CMD_THROTTLE_DOWN, "turn motors down by one throttle step"},
	{CMD_GEAR_UP, "stow landing gear"},
	{CMD_GEAR_DOWN, "deploy landing gear"},
	{CMD_STATUS, "print flight log current entry"},
	{CMD_HISTORY, "print the last [n] archived entries"},
}

var commandSet = func() map[CommandType]bool {
	set := make(map[CommandType]bool, len(COMMANDS))
	for _, c := range COMMANDS {
		set[c.Type] = true
	}
	return set
}()

// Cmd is one parsed operator line.
type Cmd struct {
	Type CommandType
	Args []string
}

func ParseCmd(line string) (cmd Cmd, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return cmd, errors.UnknownCommandError{Token: line}
	}

	t := CommandType(fields[0])
	if !commandSet[t] {
		return cmd, errors.UnknownCommandError{Token: fields[0]}
	}

	return Cmd{Type: t, Args: fields[1:]}, nil
}

func HelpText() string {
	var b strings.Builder
	b.WriteString("************ TRIFAN HELP *************** \n")
	b.WriteString("Command Options: \n")
	for _, c := range COMMANDS {
		fmt.Fprintf(&b, "  %-16s -> %s\n", "'"+string(c.Type)+"'", c.Help)
	}
	b.WriteString("**************************************** \n")
	return b.String()
}
