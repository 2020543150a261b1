package http

// ErrorKind classifies why a send failed
type ErrorKind int

const (
	// ErrURL means the URL could not be parsed; nothing was dispatched
	ErrURL ErrorKind = iota
	// ErrTransport covers DNS, connect, TLS and timeout failures
	ErrTransport
	// ErrFile means a multipart file could not be read
	ErrFile
	// ErrCanceled means the caller abandoned the send
	ErrCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrURL:
		return "url"
	case ErrTransport:
		return "transport"
	case ErrFile:
		return "io"
	case ErrCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// SendError is the failure side of an execution
type SendError struct {
	Kind ErrorKind
	Err  error
}

func (e *SendError) Error() string {
	return e.Err.Error()
}

func (e *SendError) Unwrap() error {
	return e.Err
}
