package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// Ledger error constructors. All of these are recoverable: the operator
// corrects the input and retries. None leave partial state behind.

// ErrLimitExceeded rejects a fiado grant that would push the player's
// credit balance over their limit. The grant is rejected outright, never
// clamped down to the limit.
func ErrLimitExceeded(balance, limit, amount Cents) *AppError {
	return &AppError{
		Code:    "LIMIT_EXCEEDED",
		Message: fmt.Sprintf("credit grant of %s would exceed limit %s (balance %s)", amount, limit, balance),
		Status:  422,
	}
}

// ErrOverpaymentRejected rejects a payment against a single credit record
// that exceeds the record's remaining amount.
func ErrOverpaymentRejected(amount, remaining Cents) *AppError {
	return &AppError{
		Code:    "OVERPAYMENT_REJECTED",
		Message: fmt.Sprintf("payment of %s exceeds remaining debt %s", amount, remaining),
		Status:  422,
	}
}

// ErrExcessPayment rejects a multi-record payment that exceeds the player's
// total outstanding debt. The remainder is never banked.
func ErrExcessPayment(amount, outstanding Cents) *AppError {
	return &AppError{
		Code:    "EXCESS_PAYMENT",
		Message: fmt.Sprintf("payment of %s exceeds total outstanding debt %s", amount, outstanding),
		Status:  422,
	}
}

// ErrSessionClosed rejects any mutation targeting a closed cash session.
func ErrSessionClosed(sessionID string) *AppError {
	return &AppError{
		Code:    "SESSION_CLOSED",
		Message: fmt.Sprintf("cash session %s is closed", sessionID),
		Status:  409,
	}
}

// ErrNotUndoable rejects an undo of an audit entry whose action type is not
// in the undoable subset.
func ErrNotUndoable(action string) *AppError {
	return &AppError{
		Code:    "NOT_UNDOABLE",
		Message: fmt.Sprintf("audit action %s cannot be undone", action),
		Status:  422,
	}
}

// ErrIncompleteSnapshot rejects an undo whose stored snapshot lacks a
// required field (old-format audit entries).
func ErrIncompleteSnapshot(field string) *AppError {
	return &AppError{
		Code:    "INCOMPLETE_SNAPSHOT",
		Message: fmt.Sprintf("audit snapshot is missing required field %q", field),
		Status:  422,
	}
}
