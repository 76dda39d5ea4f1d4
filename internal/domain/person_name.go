package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 50

type PersonName struct {
	firstName string
	lastName  string
}

func NewPersonName(firstName, lastName string) (PersonName, error) {
	if err := validateName(firstName, "first name"); err != nil {
		return PersonName{}, err
	}
	if err := validateName(lastName, "last name"); err != nil {
		return PersonName{}, err
	}
	return PersonName{firstName: firstName, lastName: lastName}, nil
}

func (n PersonName) FirstName() string { return n.firstName }
func (n PersonName) LastName() string  { return n.lastName }

func validateName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidAccountData, field)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: %s cannot exceed %d characters", ErrInvalidAccountData, field, maxNameLength)
	}
	return nil
}
