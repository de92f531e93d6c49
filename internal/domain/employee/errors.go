package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmailExists             = errors.New("email already registered")
	ErrCPFExists               = errors.New("CPF already registered")
	ErrInvalidStatus           = errors.New("status must be active or inactive")
	ErrFutureDateNotAllowed    = errors.New("date cannot be in the future")
	ErrEmployeeAlreadyActive   = errors.New("employee is already active")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrCannotDeactivateSelf    = errors.New("cannot deactivate your own account")
	ErrNoFieldsToUpdate        = errors.New("no fields to update")
)
