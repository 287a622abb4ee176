package database

import (
	"errors"
	"fmt"
)

// Set of errors a transaction can fail with. None of them are fatal, the
// transaction is dropped and the ledger is left untouched.
var (
	ErrSignatureInvalid  = errors.New("transaction signature failed to verify")
	ErrInputNotFound     = errors.New("transaction input not found")
	ErrInputNotOwned     = errors.New("transaction input not owned by sender")
	ErrBelowMinimum      = errors.New("transaction inputs below minimum value")
	ErrInsufficientFunds = errors.New("not enough funds to send transaction")
	ErrNegativeValue     = errors.New("invalid transaction value")
	ErrAlreadyProcessed  = errors.New("transaction already processed")
	ErrOutputCollision   = errors.New("transaction outputs collide with existing outputs")
)

// ErrStaleTip is returned when a block is appended whose previous hash no
// longer matches the latest block in the chain.
var ErrStaleTip = errors.New("block previous hash does not match chain tip")

// =============================================================================

// IntegrityError reports the first block found to break the chain rules.
type IntegrityError struct {
	Index  int
	Hash   string
	Reason string
}

// Error implements the error interface.
func (ie *IntegrityError) Error() string {
	return fmt.Sprintf("block %d [%s]: %s", ie.Index, ie.Hash, ie.Reason)
}

// IsIntegrityError checks if an error of type IntegrityError exists.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
