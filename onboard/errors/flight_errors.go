package errors

import "fmt"

// UnknownCommandError is returned when the operator enters a token that is
// not part of the command set.
type UnknownCommandError struct {
	Token string
}

func (err UnknownCommandError) Error() string {
	return fmt.Sprintf("NO SUCH COMMAND!! %s", err.Token)
}

// TransitionError is returned when a command is not allowed from the current
// actuator configuration. Guidance is printed to the operator as-is.
type TransitionError struct {
	Command  string
	Guidance string
}

func (err TransitionError) Error() string {
	if len(err.Guidance) == 0 {
		if len(err.Command) == 0 {
			err.Command = "UNKNOWN"
		}
		return fmt.Sprintf("unable to perform %s in the current configuration", err.Command)
	}

	return err.Guidance
}
