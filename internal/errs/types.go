package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// UnsupportedFormatError rejects statement uploads in a format the parser
// does not understand.
type UnsupportedFormatError struct {
	ErrorMessage
}

// NoActiveFiscalYearError aborts an import batch when the company has no
// current fiscal year; entry numbering depends on one.
type NoActiveFiscalYearError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewUnsupportedFormatError(format string) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		ErrorMessage: ErrorMessage{Message: "unsupported statement format: " + format},
	}
}

func NewNoActiveFiscalYearError() *NoActiveFiscalYearError {
	return &NoActiveFiscalYearError{
		ErrorMessage: ErrorMessage{Message: "no active fiscal year for company"},
	}
}

func NewDatabaseError(operation, message string) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
	}
}
