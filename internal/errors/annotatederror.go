package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// err is the wrapped error, nil for errors created with New.
	err error
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, nil, attrs)
}

// Wrap adds a message, the caller location and attributes to err.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, err, attrs)
}

func newAnnotated(msg string, err error, attrs []slog.Attr) *AnnotatedError {
	var pcs [1]uintptr
	// Skip runtime.Callers, this function and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above
	return &AnnotatedError{
		msg:   msg,
		err:   err,
		pc:    pcs[0],
		attrs: attrs,
	}
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be
// detected with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Error implements error interface.
func (e *AnnotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.err.Error())
}

// Unwrap returns the wrapped error.
func (e *AnnotatedError) Unwrap() error {
	return e.err
}

// LogValue formats the error for useful logging.
func (e *AnnotatedError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2) //nolint:mnd // message and source
	attrs = append(attrs, slog.String("message", e.Error()), e.sourceAttr())
	attrs = append(attrs, e.attrs...)

	return slog.GroupValue(attrs...)
}

// sourceAttr retrieves the source location of the error so that developers can locate it faster.
func (e *AnnotatedError) sourceAttr() slog.Attr {
	frames := runtime.CallersFrames([]uintptr{e.pc})
	source, _ := frames.Next()
	return slog.String("source", fmt.Sprintf("%s:%d", source.File, source.Line))
}

// SlogError returns an attribute that logs err together with the attributes of every AnnotatedError in its chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	attrs := []slog.Attr{slog.String("message", err.Error())}
	hasSource := false
	for e := err; e != nil; e = errors.Unwrap(e) {
		annotated, ok := e.(*AnnotatedError)
		if !ok {
			continue
		}
		// The outermost annotated error carries the most specific source location.
		if !hasSource {
			attrs = append(attrs, annotated.sourceAttr())
			hasSource = true
		}
		attrs = append(attrs, annotated.attrs...)
	}
	if !hasSource {
		return slog.String("error", err.Error())
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
