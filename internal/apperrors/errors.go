package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the requesting user lacks the role required for an action.
var ErrForbidden = errors.New("action not permitted")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Posting and allocation failures. Every one of these is a synchronous
// validation rejection: the caller fixes the input and resubmits, and the
// ledger is guaranteed untouched when any of them is returned.
var (
	// ErrUnbalancedEntry indicates a journal whose debit and credit sums differ.
	ErrUnbalancedEntry = errors.New("journal entry does not balance")

	// ErrUnknownAccount indicates a journal line referencing an account that does not exist.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrMissingDefaultAccounts indicates the company has not configured the
	// default accounts a posting rule requires.
	ErrMissingDefaultAccounts = errors.New("default accounts not configured")

	// ErrAlreadyPosted indicates a second post attempt against the same document.
	ErrAlreadyPosted = errors.New("document already posted")

	// ErrOverAllocation indicates a payment allocation that would push a
	// document's paid amount past its total.
	ErrOverAllocation = errors.New("allocation exceeds document balance")

	// ErrInvalidRate indicates an exchange rate that is zero or negative.
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrInsufficientStock indicates a consumption that would drive quantity
	// below zero while the company policy forbids negative stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotReceived indicates a purchase order posted before being received.
	ErrNotReceived = errors.New("purchase order not yet received")
)
