package cumtd

import (
	"strings"
)

// Kind classifies a failed query.
type Kind int

const (
	// KindClient means the transport could not be constructed or configured.
	KindClient Kind = iota + 1

	// KindRequest means the round trip failed: network error, cancellation,
	// non-success status or an open circuit.
	KindRequest

	// KindDecode means the response body could not be parsed into the
	// expected shape.
	KindDecode

	// KindFormat means a local date could not be rendered for the wire.
	KindFormat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindRequest:
		return "request"
	case KindDecode:
		return "decode"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is. Any *Error of the same Kind matches.
var (
	ErrClient  = &Error{Kind: KindClient}
	ErrRequest = &Error{Kind: KindRequest}
	ErrDecode  = &Error{Kind: KindDecode}
	ErrFormat  = &Error{Kind: KindFormat}
)

// Error is returned by every query. Callers branch on Kind; Msg is for humans.
type Error struct {
	Kind Kind   // Failure class
	Op   string // Endpoint or operation that failed
	Msg  string // Human-readable context
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.prefix())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) prefix() string {
	switch e.Kind {
	case KindClient:
		return "create HTTP client failed"
	case KindRequest:
		return "request failed"
	case KindDecode:
		return "deserializing response failed"
	case KindFormat:
		return "unable to format date"
	default:
		return "cumtd error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Failure is the coarse classification a transport gives a failed call.
type Failure int

const (
	// FailureSetup is a failure to build the request or the client.
	FailureSetup Failure = iota

	// FailureInFlight is a failure while the request was on the wire.
	FailureInFlight

	// FailureOther is anything else the transport reports.
	FailureOther
)

// FromTransportFailure maps a transport failure onto the error taxonomy.
func FromTransportFailure(f Failure, op string, err error) *Error {
	switch f {
	case FailureSetup:
		return &Error{Kind: KindClient, Op: op, Err: err}
	case FailureInFlight:
		return &Error{Kind: KindRequest, Op: op, Err: err}
	default:
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
}
