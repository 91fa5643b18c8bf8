package domain

import "fmt"

type ErrCode string

const (
	CodeValidation      ErrCode = "validation_error"
	CodeNotFound        ErrCode = "not_found"
	CodeUnauthenticated ErrCode = "unauthenticated"
	CodeNetworkFailure  ErrCode = "network_failure"
	CodeRemoteRejected  ErrCode = "remote_rejected"
	CodePersistence     ErrCode = "persistence_error"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string

	cause error
}

func (e *AppError) Error() string {
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

func (e *AppError) Unwrap() error { return e.cause }

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error        { return &AppError{Code: CodeNotFound, Message: msg} }
func ErrUnauthenticated(msg string) error { return &AppError{Code: CodeUnauthenticated, Message: msg} }

func ErrNetworkFailure(msg string, cause error) error {
	return &AppError{Code: CodeNetworkFailure, Message: msg, cause: cause}
}
func ErrRemoteRejected(msg string, cause error) error {
	return &AppError{Code: CodeRemoteRejected, Message: msg, cause: cause}
}
func ErrPersistence(msg string, cause error) error {
	return &AppError{Code: CodePersistence, Message: msg, cause: cause}
}
