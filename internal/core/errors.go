package core

// ErrorKind classifies failures so transport layers can map them to
// machine-readable responses without parsing message text.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindStorage      ErrorKind = "storage"
)

// Error pairs a kind with a wrapped cause. The cause is logged server-side;
// clients only ever see the kind plus a generic message.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindStorage
// so unclassified failures stay generic 500s.
func KindOf(err error) ErrorKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindStorage
}
