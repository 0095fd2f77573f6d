package payslips

import (
	"context"
	"fmt"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Create validates the period and amounts, freezes the employee snapshot,
// derives the stored aggregates, and persists the payslip as a draft. The
// (employeeId, month, year) unique constraint is the authoritative duplicate
// check; a violation at write time surfaces as ErrDuplicatePeriod regardless
// of any earlier read.
func (s *Service) Create(ctx context.Context, input CreateInput) (Payslip, error) {
	month, ok := CanonicalMonth(input.Month)
	if !ok {
		return Payslip{}, fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, input.Month)
	}
	if input.Year < 1900 || input.Year > 9999 {
		return Payslip{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, input.Year)
	}
	if err := ValidateAmounts(input.Amounts); err != nil {
		return Payslip{}, err
	}

	snapshot, err := s.resolveSnapshot(ctx, input.EmployeeID, input.Snapshot)
	if err != nil {
		return Payslip{}, err
	}

	totalEarnings, totalDeductions, netPay := ComputeTotals(input.Amounts.Earnings, input.Amounts.Deductions)

	return s.store.Insert(ctx, Payslip{
		EmployeeID:      input.EmployeeID,
		Month:           month,
		Year:            input.Year,
		Snapshot:        snapshot,
		AnnualSalary:    input.Amounts.AnnualSalary,
		Earnings:        input.Amounts.Earnings,
		Employer:        input.Amounts.Employer,
		Deductions:      input.Amounts.Deductions,
		TotalEarnings:   totalEarnings,
		TotalDeductions: totalDeductions,
		NetPay:          netPay,
		Bank:            input.Bank,
		PSFNo:           input.PSFNo,
		TaxableBenefits: input.Amounts.TaxableBenefits,
		Status:          StatusDraft,
		ReferenceNo:     input.ReferenceNo,
	})
}

// resolveSnapshot fills in snapshot fields the caller left empty from the
// live user record, once, at creation time. After this point the snapshot is
// frozen with the payslip.
func (s *Service) resolveSnapshot(ctx context.Context, employeeID string, snapshot Snapshot) (Snapshot, error) {
	name, department, position, err := s.store.EmployeeDetails(ctx, employeeID)
	if err != nil {
		return Snapshot{}, err
	}
	if snapshot.StaffNo == "" {
		snapshot.StaffNo = employeeID
	}
	if snapshot.EmployeeName == "" {
		snapshot.EmployeeName = name
	}
	if snapshot.Department == "" {
		snapshot.Department = department
	}
	if snapshot.Position == "" {
		snapshot.Position = position
	}
	if snapshot.Region == "" {
		snapshot.Region = DefaultRegion
	}
	return snapshot, nil
}

// RecomputeAmounts replaces the monetary inputs of an existing payslip and
// re-derives the three aggregates in the same write. This is the only
// mutation path for amounts, so stored totals can never disagree with their
// components.
func (s *Service) RecomputeAmounts(ctx context.Context, id string, amounts Amounts) (Payslip, error) {
	if err := ValidateAmounts(amounts); err != nil {
		return Payslip{}, err
	}

	payslip, err := s.store.Get(ctx, id)
	if err != nil {
		return Payslip{}, err
	}

	payslip.AnnualSalary = amounts.AnnualSalary
	payslip.Earnings = amounts.Earnings
	payslip.Employer = amounts.Employer
	payslip.Deductions = amounts.Deductions
	payslip.TaxableBenefits = amounts.TaxableBenefits
	payslip.TotalEarnings, payslip.TotalDeductions, payslip.NetPay = ComputeTotals(amounts.Earnings, amounts.Deductions)

	if err := s.store.UpdateAmounts(ctx, payslip); err != nil {
		return Payslip{}, err
	}
	return s.store.Get(ctx, id)
}

// AdvanceStatus moves a payslip one step forward: draft to approved, or
// approved to paid. Anything else, including every backwards move, is an
// invalid transition.
func (s *Service) AdvanceStatus(ctx context.Context, id, target string) (Payslip, error) {
	payslip, err := s.store.Get(ctx, id)
	if err != nil {
		return Payslip{}, err
	}
	if !CanTransition(payslip.Status, target) {
		return Payslip{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, payslip.Status, target)
	}

	moved, err := s.store.UpdateStatus(ctx, id, payslip.Status, target)
	if err != nil {
		return Payslip{}, err
	}
	if !moved {
		// Lost a race with a concurrent transition.
		return Payslip{}, fmt.Errorf("%w: payslip no longer in %s", ErrInvalidTransition, payslip.Status)
	}
	return s.store.Get(ctx, id)
}

func (s *Service) GetByPeriod(ctx context.Context, employeeID, month string, year int) (Payslip, error) {
	canonical, ok := CanonicalMonth(month)
	if !ok {
		return Payslip{}, fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, month)
	}
	return s.store.GetByPeriod(ctx, employeeID, canonical, year)
}

func (s *Service) Get(ctx context.Context, id string) (Payslip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID string) ([]Payslip, error) {
	return s.store.ListForEmployee(ctx, employeeID)
}
