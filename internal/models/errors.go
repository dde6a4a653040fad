package models

import "errors"

// Domain errors surfaced by repositories and services. Handlers translate
// these to HTTP responses; none of them are retried internally.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid session state")
	ErrAstrologerBusy    = errors.New("astrologer is busy with another session")
	ErrAstrologerOffline = errors.New("astrologer is not available")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrAlreadyResponded  = errors.New("request already responded")
	ErrWalletInactive    = errors.New("wallet is inactive")
)
