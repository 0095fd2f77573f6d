package payslips

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot holds the employee descriptive fields copied into a payslip at
// creation time. They are frozen for historical accuracy and never re-read
// from the live user record.
type Snapshot struct {
	StaffNo      string `json:"staffNo"`
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`
	Position     string `json:"position,omitempty"`
	CostCentre   string `json:"costCentre,omitempty"`
	Region       string `json:"region"`
	Band         string `json:"band,omitempty"`
}

type Earnings struct {
	BasicSalaryHrs       decimal.Decimal `json:"basicSalaryHrs"`
	BasicSalaryAmount    decimal.Decimal `json:"basicSalaryAmount"`
	FuelAllowance        decimal.Decimal `json:"fuelAllowance"`
	HousingAllowance     decimal.Decimal `json:"housingAllowance"`
	TransportAllowance   decimal.Decimal `json:"transportAllowance"`
	UtilitySubsidy       decimal.Decimal `json:"utilitySubsidy"`
	MaintenanceAllowance decimal.Decimal `json:"maintenanceAllowance"`
	Bonus                decimal.Decimal `json:"bonus"`
	OtherAllowances      decimal.Decimal `json:"otherAllowances"`
}

type EmployerContributions struct {
	EmployerSSF decimal.Decimal `json:"employerSSF"`
	TotalSSF    decimal.Decimal `json:"totalSSF"`
	EmployerPF  decimal.Decimal `json:"employerPF"`
	TotalPF     decimal.Decimal `json:"totalPF"`
}

type Deductions struct {
	SSFEmployee     decimal.Decimal `json:"ssfEmployee"`
	IncomeTax       decimal.Decimal `json:"incomeTax"`
	ProvidentFund   decimal.Decimal `json:"providentFund"`
	Loans           decimal.Decimal `json:"loans"`
	OtherDeductions decimal.Decimal `json:"otherDeductions"`
}

type BankDetails struct {
	BankName      string `json:"bankName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

type Payslip struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Month      string `json:"month"`
	Year       int    `json:"year"`

	Snapshot     Snapshot        `json:"snapshot"`
	AnnualSalary decimal.Decimal `json:"annualSalary"`

	Earnings   Earnings              `json:"earnings"`
	Employer   EmployerContributions `json:"employerContributions"`
	Deductions Deductions            `json:"deductions"`

	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`

	Bank            BankDetails     `json:"bank"`
	PSFNo           string          `json:"psfNo,omitempty"`
	TaxableBenefits decimal.Decimal `json:"taxableBenefits"`

	Status      string    `json:"status"`
	ReferenceNo string    `json:"referenceNo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Amounts groups every mutable monetary input of a payslip. Mutation paths
// carry the full set so the aggregates are always recomputed together.
type Amounts struct {
	AnnualSalary    decimal.Decimal       `json:"annualSalary"`
	Earnings        Earnings              `json:"earnings"`
	Employer        EmployerContributions `json:"employerContributions"`
	Deductions      Deductions            `json:"deductions"`
	TaxableBenefits decimal.Decimal       `json:"taxableBenefits"`
}

type CreateInput struct {
	EmployeeID  string
	Month       string
	Year        int
	Snapshot    Snapshot
	Amounts     Amounts
	Bank        BankDetails
	PSFNo       string
	ReferenceNo string
}
