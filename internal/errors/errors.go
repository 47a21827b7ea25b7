package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidAmount        ErrorCode = "invalid_amount"
	InsufficientFunds    ErrorCode = "insufficient_funds"
	SelfTransfer         ErrorCode = "self_transfer"
	DuplicateUser        ErrorCode = "duplicate_user"
	AuthenticationFailed ErrorCode = "authentication_failed"
	TransferFailed       ErrorCode = "transfer_failed"
	LedgerFull           ErrorCode = "ledger_full"
	AccountNotFound      ErrorCode = "account_not_found"
	TransactionNotFound  ErrorCode = "transaction_not_found"
	DuplicateTransaction ErrorCode = "duplicate_transaction"
	InvalidInput         ErrorCode = "invalid_input"
	InternalError        ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	cause error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any AppError carrying the same code, so copies produced by
// WithDetails or Wrap still satisfy errors.Is against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e that unwraps to cause.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.cause = cause
	if cause != nil && cp.Details == "" {
		cp.Details = cause.Error()
	}
	return &cp
}

// HTTPStatus maps the error code to the status the HTTP layer answers with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidAmount, InvalidInput, SelfTransfer:
		return http.StatusBadRequest
	case AuthenticationFailed:
		return http.StatusUnauthorized
	case AccountNotFound, TransactionNotFound:
		return http.StatusNotFound
	case DuplicateUser, DuplicateTransaction:
		return http.StatusConflict
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case LedgerFull:
		return http.StatusInsufficientStorage
	case TransferFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is and As forward to the standard library so callers need one errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Predefined errors for common cases
var (
	ErrInvalidAmount        = NewAppError(InvalidAmount, "amount must be greater than zero")
	ErrInsufficientFunds    = NewAppError(InsufficientFunds, "insufficient funds")
	ErrSelfTransfer         = NewAppError(SelfTransfer, "source and destination accounts must differ")
	ErrDuplicateUser        = NewAppError(DuplicateUser, "user already exists")
	ErrAuthenticationFailed = NewAppError(AuthenticationFailed, "invalid user id or credential")
	ErrTransferFailed       = NewAppError(TransferFailed, "transfer failed and was reversed")
	ErrLedgerFull           = NewAppError(LedgerFull, "account ledger is full")
	ErrAccountNotFound      = NewAppError(AccountNotFound, "account not found")
	ErrTransactionNotFound  = NewAppError(TransactionNotFound, "transaction not found")
	ErrDuplicateTransaction = NewAppError(DuplicateTransaction, "transaction already in progress")
	ErrInvalidAccountID     = NewAppError(InvalidInput, "invalid account id")
)
