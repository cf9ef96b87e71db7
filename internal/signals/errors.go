package signals

import "fmt"

// ErrorKind classifies why an evaluation could not produce a signal set.
type ErrorKind int

const (
	InsufficientData ErrorKind = iota + 1
	ParseError
	SourceUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case InsufficientData:
		return "InsufficientData"
	case ParseError:
		return "ParseError"
	case SourceUnavailable:
		return "SourceUnavailable"
	default:
		return "Unknown"
	}
}

// Error carries the failure kind; Msg is diagnostic only.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a collaborator failure that left no price data to evaluate.
func Unavailable(err error) *Error {
	return &Error{Kind: SourceUnavailable, Msg: err.Error()}
}
