package usecase

import "errors"

// Error codes, one per branch of the taxonomy: validation errors resolve
// through the resumption protocol, stale keys surface to the caller,
// integrity errors park the sale for a human, everything else is transport
// and belongs to the next sweep cycle.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeStaleKey   = "STALE_RESUME_KEY"
	CodeIntegrity  = "INTEGRITY_ERROR"
	CodeBadForm    = "UNKNOWN_FORM"
)

// DomainError is a failure the client (or an admin) can act on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is a transport or storage failure; the sale survives it and
// the reconciliation sweep finishes whatever step was interrupted.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func domainErr(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}
