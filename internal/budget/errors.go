package budget

import "errors"

var (
	ErrInvalidAmount             = errors.New("the amount must not be negative")
	ErrInvalidTarget             = errors.New("the target is invalid")
	ErrInsufficientReadyToAssign = errors.New("there is not enough money ready to assign to fund all underfunded categories")
	ErrNotFound                  = errors.New("there is no")
)
