package engine

import "fmt"

// Result is the status word returned by every engine call.
// Zero is success; any other value is a failure.
type Result uint32

const (
	ResultSuccess Result = iota
	ResultError
	ResultInvalidArgument
	ResultNotFound
	ResultAlreadyExists
	ResultNotSupported
	ResultNotCreated
	ResultOutOfRange
)

var resultNames = map[Result]string{
	ResultSuccess:         "success",
	ResultError:           "error",
	ResultInvalidArgument: "invalid argument",
	ResultNotFound:        "not found",
	ResultAlreadyExists:   "already exists",
	ResultNotSupported:    "not supported",
	ResultNotCreated:      "not created",
	ResultOutOfRange:      "out of range",
}

// IsSuccess reports whether r is a success result.
func (r Result) IsSuccess() bool { return r == ResultSuccess }

// Failed reports whether r is a failure result.
func (r Result) Failed() bool { return r != ResultSuccess }

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("result(%d)", uint32(r))
}

// CommandError is a failed engine call.
type CommandError struct {
	Command Command
	Result  Result
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("engine command %s failed: %s", e.Command, e.Result)
}

// Check converts the result of cmd into an error, nil on success.
func Check(cmd Command, r Result) error {
	if r.IsSuccess() {
		return nil
	}
	return &CommandError{Command: cmd, Result: r}
}
