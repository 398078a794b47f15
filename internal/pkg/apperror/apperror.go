package apperror

// AppError carries an HTTP status, a user-facing message and an optional cause.
type AppError struct {
	Code      int    // HTTP status code
	Message   string // safe to show to the client
	Retryable bool   // the client may resubmit the same request unchanged
	Err       error  // internal cause, never exposed
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same status and message, so a sentinel
// still matches after WithCause attached a cause to a copy of it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// WithCause returns a copy of the error wrapping err.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewRetryable creates an AppError the client is expected to retry.
func NewRetryable(code int, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
