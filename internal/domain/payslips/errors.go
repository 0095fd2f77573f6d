package payslips

import "errors"

var (
	ErrNotFound           = errors.New("payslip not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDuplicatePeriod    = errors.New("payslip already exists for this employee and period")
	ErrDuplicateReference = errors.New("reference number already in use")
	ErrInvalidAmount      = errors.New("monetary amounts must be non-negative")
	ErrInvalidTransition  = errors.New("invalid payslip status transition")
	ErrInvalidPeriod      = errors.New("invalid payslip period")
)
