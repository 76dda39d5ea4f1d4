package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// AccountID is the opaque public identity of an account.
type AccountID string

func NewAccountID() AccountID {
	return AccountID(uuid.NewString())
}

// ParseAccountID accepts only well-formed ids. A malformed id can never name
// an existing account, so it is reported as not found.
func ParseAccountID(value string) (AccountID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a valid account id", ErrAccountNotFound, value)
	}
	return AccountID(id.String()), nil
}

func (id AccountID) String() string {
	return string(id)
}
