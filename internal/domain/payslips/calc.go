package payslips

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type amountField struct {
	name  string
	value decimal.Decimal
}

func (e Earnings) components() []amountField {
	return []amountField{
		{"basicSalaryAmount", e.BasicSalaryAmount},
		{"fuelAllowance", e.FuelAllowance},
		{"housingAllowance", e.HousingAllowance},
		{"transportAllowance", e.TransportAllowance},
		{"utilitySubsidy", e.UtilitySubsidy},
		{"maintenanceAllowance", e.MaintenanceAllowance},
		{"bonus", e.Bonus},
		{"otherAllowances", e.OtherAllowances},
	}
}

func (d Deductions) components() []amountField {
	return []amountField{
		{"ssfEmployee", d.SSFEmployee},
		{"incomeTax", d.IncomeTax},
		{"providentFund", d.ProvidentFund},
		{"loans", d.Loans},
		{"otherDeductions", d.OtherDeductions},
	}
}

func (a Amounts) fields() []amountField {
	fields := []amountField{
		{"annualSalary", a.AnnualSalary},
		{"basicSalaryHrs", a.Earnings.BasicSalaryHrs},
		{"taxableBenefits", a.TaxableBenefits},
		{"employerSSF", a.Employer.EmployerSSF},
		{"totalSSF", a.Employer.TotalSSF},
		{"employerPF", a.Employer.EmployerPF},
		{"totalPF", a.Employer.TotalPF},
	}
	fields = append(fields, a.Earnings.components()...)
	return append(fields, a.Deductions.components()...)
}

// ValidateAmounts rejects any negative monetary input before it can reach
// the store.
func ValidateAmounts(amounts Amounts) error {
	for _, field := range amounts.fields() {
		if field.value.IsNegative() {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, field.name)
		}
	}
	return nil
}

// ComputeTotals derives the three stored aggregates from the component
// amounts: total earnings is the basic salary amount plus every allowance and
// bonus, total deductions is the sum of the deduction components, and net pay
// is their difference. Totals are derived at write time and stored, so
// historical payslips keep their figures even if the formula later changes.
func ComputeTotals(earnings Earnings, deductions Deductions) (totalEarnings, totalDeductions, netPay decimal.Decimal) {
	for _, field := range earnings.components() {
		totalEarnings = totalEarnings.Add(field.value)
	}
	for _, field := range deductions.components() {
		totalDeductions = totalDeductions.Add(field.value)
	}
	return totalEarnings, totalDeductions, totalEarnings.Sub(totalDeductions)
}

// CanonicalMonth normalizes a month name to its calendar capitalization, or
// reports that the value is not a month.
func CanonicalMonth(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, month := range monthNames {
		if strings.EqualFold(trimmed, month) {
			return month, true
		}
	}
	return "", false
}
