package wallet

import "errors"

var (
	// ErrInsufficientBalance means the capture would push the ledger sum
	// below zero.
	ErrInsufficientBalance = errors.New("insufficient coin balance")

	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidSlip        = errors.New("slip must be a jpg, jpeg, png or pdf file")
	ErrTopupNotFound      = errors.New("topup request not found")
	ErrTopupAlreadyClosed = errors.New("topup request already reviewed")
)
