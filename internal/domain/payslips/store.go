package payslips

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Monetary columns cross the driver boundary as text: numeric::text on the
// way out, StringFixed(2) on the way in, so no value ever passes through a
// binary float.
const payslipColumns = `
    id, employee_id, month, year,
    staff_no, employee_name, department, COALESCE(position, ''), COALESCE(cost_centre, ''), region, COALESCE(band, ''),
    annual_salary::text,
    COALESCE(basic_salary_hrs, 0)::text, basic_salary_amount::text,
    fuel_allowance::text, housing_allowance::text, transport_allowance::text,
    utility_subsidy::text, maintenance_allowance::text, bonus::text, other_allowances::text,
    total_earnings::text,
    employer_ssf::text, total_ssf::text, employer_pf::text, total_pf::text,
    ssf_employee::text, income_tax::text, provident_fund::text, loans::text, other_deductions::text,
    total_deductions::text, net_pay::text,
    COALESCE(bank_name, ''), COALESCE(account_number, ''), COALESCE(psf_no, ''),
    taxable_benefits::text, status, COALESCE(reference_no, ''), created_at, updated_at`

func scanPayslip(row pgx.Row) (Payslip, error) {
	var p Payslip
	raw := struct {
		annualSalary, basicHrs, basicAmount                      string
		fuel, housing, transport, utility, maintenance           string
		bonus, otherAllowances, totalEarnings                    string
		employerSSF, totalSSF, employerPF, totalPF               string
		ssfEmployee, incomeTax, providentFund, loans, otherDed   string
		totalDeductions, netPay, taxableBenefits                 string
	}{}

	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.Month, &p.Year,
		&p.Snapshot.StaffNo, &p.Snapshot.EmployeeName, &p.Snapshot.Department, &p.Snapshot.Position,
		&p.Snapshot.CostCentre, &p.Snapshot.Region, &p.Snapshot.Band,
		&raw.annualSalary,
		&raw.basicHrs, &raw.basicAmount,
		&raw.fuel, &raw.housing, &raw.transport,
		&raw.utility, &raw.maintenance, &raw.bonus, &raw.otherAllowances,
		&raw.totalEarnings,
		&raw.employerSSF, &raw.totalSSF, &raw.employerPF, &raw.totalPF,
		&raw.ssfEmployee, &raw.incomeTax, &raw.providentFund, &raw.loans, &raw.otherDed,
		&raw.totalDeductions, &raw.netPay,
		&p.Bank.BankName, &p.Bank.AccountNumber, &p.PSFNo,
		&raw.taxableBenefits, &p.Status, &p.ReferenceNo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Payslip{}, err
	}

	for _, field := range []struct {
		text   string
		target *decimal.Decimal
	}{
		{raw.annualSalary, &p.AnnualSalary},
		{raw.basicHrs, &p.Earnings.BasicSalaryHrs},
		{raw.basicAmount, &p.Earnings.BasicSalaryAmount},
		{raw.fuel, &p.Earnings.FuelAllowance},
		{raw.housing, &p.Earnings.HousingAllowance},
		{raw.transport, &p.Earnings.TransportAllowance},
		{raw.utility, &p.Earnings.UtilitySubsidy},
		{raw.maintenance, &p.Earnings.MaintenanceAllowance},
		{raw.bonus, &p.Earnings.Bonus},
		{raw.otherAllowances, &p.Earnings.OtherAllowances},
		{raw.totalEarnings, &p.TotalEarnings},
		{raw.employerSSF, &p.Employer.EmployerSSF},
		{raw.totalSSF, &p.Employer.TotalSSF},
		{raw.employerPF, &p.Employer.EmployerPF},
		{raw.totalPF, &p.Employer.TotalPF},
		{raw.ssfEmployee, &p.Deductions.SSFEmployee},
		{raw.incomeTax, &p.Deductions.IncomeTax},
		{raw.providentFund, &p.Deductions.ProvidentFund},
		{raw.loans, &p.Deductions.Loans},
		{raw.otherDed, &p.Deductions.OtherDeductions},
		{raw.totalDeductions, &p.TotalDeductions},
		{raw.netPay, &p.NetPay},
		{raw.taxableBenefits, &p.TaxableBenefits},
	} {
		parsed, err := decimal.NewFromString(field.text)
		if err != nil {
			return Payslip{}, fmt.Errorf("parse stored amount %q: %w", field.text, err)
		}
		*field.target = parsed
	}
	return p, nil
}

func (s *Store) Insert(ctx context.Context, payslip Payslip) (Payslip, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO payslips (
      employee_id, month, year,
      staff_no, employee_name, department, position, cost_centre, region, band,
      annual_salary, basic_salary_hrs, basic_salary_amount,
      fuel_allowance, housing_allowance, transport_allowance,
      utility_subsidy, maintenance_allowance, bonus, other_allowances,
      total_earnings,
      employer_ssf, total_ssf, employer_pf, total_pf,
      ssf_employee, income_tax, provident_fund, loans, other_deductions,
      total_deductions, net_pay,
      bank_name, account_number, psf_no, taxable_benefits,
      status, reference_no
    ) VALUES (
      $1, $2, $3,
      $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, NULLIF($10, ''),
      $11, $12, $13,
      $14, $15, $16,
      $17, $18, $19, $20,
      $21,
      $22, $23, $24, $25,
      $26, $27, $28, $29, $30,
      $31, $32,
      NULLIF($33, ''), NULLIF($34, ''), NULLIF($35, ''), $36,
      $37, NULLIF($38, '')
    )
    RETURNING `+payslipColumns,
		payslip.EmployeeID, payslip.Month, payslip.Year,
		payslip.Snapshot.StaffNo, payslip.Snapshot.EmployeeName, payslip.Snapshot.Department,
		payslip.Snapshot.Position, payslip.Snapshot.CostCentre, payslip.Snapshot.Region, payslip.Snapshot.Band,
		payslip.AnnualSalary.StringFixed(2), payslip.Earnings.BasicSalaryHrs.StringFixed(2), payslip.Earnings.BasicSalaryAmount.StringFixed(2),
		payslip.Earnings.FuelAllowance.StringFixed(2), payslip.Earnings.HousingAllowance.StringFixed(2), payslip.Earnings.TransportAllowance.StringFixed(2),
		payslip.Earnings.UtilitySubsidy.StringFixed(2), payslip.Earnings.MaintenanceAllowance.StringFixed(2), payslip.Earnings.Bonus.StringFixed(2), payslip.Earnings.OtherAllowances.StringFixed(2),
		payslip.TotalEarnings.StringFixed(2),
		payslip.Employer.EmployerSSF.StringFixed(2), payslip.Employer.TotalSSF.StringFixed(2), payslip.Employer.EmployerPF.StringFixed(2), payslip.Employer.TotalPF.StringFixed(2),
		payslip.Deductions.SSFEmployee.StringFixed(2), payslip.Deductions.IncomeTax.StringFixed(2), payslip.Deductions.ProvidentFund.StringFixed(2), payslip.Deductions.Loans.StringFixed(2), payslip.Deductions.OtherDeductions.StringFixed(2),
		payslip.TotalDeductions.StringFixed(2), payslip.NetPay.StringFixed(2),
		payslip.Bank.BankName, payslip.Bank.AccountNumber, payslip.PSFNo, payslip.TaxableBenefits.StringFixed(2),
		payslip.Status, payslip.ReferenceNo,
	)
	created, err := scanPayslip(row)
	if err != nil {
		if mapped := mapConstraint(err); mapped != nil {
			return Payslip{}, mapped
		}
		return Payslip{}, err
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id string) (Payslip, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE id = $1", id)
	payslip, err := scanPayslip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrNotFound
	}
	return payslip, err
}

func (s *Store) GetByPeriod(ctx context.Context, employeeID, month string, year int) (Payslip, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE employee_id = $1 AND month = $2 AND year = $3", employeeID, month, year)
	payslip, err := scanPayslip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrNotFound
	}
	return payslip, err
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string) ([]Payslip, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE employee_id = $1 ORDER BY year DESC, created_at DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payslips []Payslip
	for rows.Next() {
		payslip, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		payslips = append(payslips, payslip)
	}
	return payslips, rows.Err()
}

// UpdateAmounts persists the mutable monetary inputs together with their
// freshly derived aggregates. Callers must have recomputed the totals; the
// store never writes components without them.
func (s *Store) UpdateAmounts(ctx context.Context, payslip Payslip) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips SET
      annual_salary = $1, basic_salary_hrs = $2, basic_salary_amount = $3,
      fuel_allowance = $4, housing_allowance = $5, transport_allowance = $6,
      utility_subsidy = $7, maintenance_allowance = $8, bonus = $9, other_allowances = $10,
      total_earnings = $11,
      employer_ssf = $12, total_ssf = $13, employer_pf = $14, total_pf = $15,
      ssf_employee = $16, income_tax = $17, provident_fund = $18, loans = $19, other_deductions = $20,
      total_deductions = $21, net_pay = $22, taxable_benefits = $23,
      updated_at = now()
    WHERE id = $24
  `,
		payslip.AnnualSalary.StringFixed(2), payslip.Earnings.BasicSalaryHrs.StringFixed(2), payslip.Earnings.BasicSalaryAmount.StringFixed(2),
		payslip.Earnings.FuelAllowance.StringFixed(2), payslip.Earnings.HousingAllowance.StringFixed(2), payslip.Earnings.TransportAllowance.StringFixed(2),
		payslip.Earnings.UtilitySubsidy.StringFixed(2), payslip.Earnings.MaintenanceAllowance.StringFixed(2), payslip.Earnings.Bonus.StringFixed(2), payslip.Earnings.OtherAllowances.StringFixed(2),
		payslip.TotalEarnings.StringFixed(2),
		payslip.Employer.EmployerSSF.StringFixed(2), payslip.Employer.TotalSSF.StringFixed(2), payslip.Employer.EmployerPF.StringFixed(2), payslip.Employer.TotalPF.StringFixed(2),
		payslip.Deductions.SSFEmployee.StringFixed(2), payslip.Deductions.IncomeTax.StringFixed(2), payslip.Deductions.ProvidentFund.StringFixed(2), payslip.Deductions.Loans.StringFixed(2), payslip.Deductions.OtherDeductions.StringFixed(2),
		payslip.TotalDeductions.StringFixed(2), payslip.NetPay.StringFixed(2), payslip.TaxableBenefits.StringFixed(2),
		payslip.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves id from one status to another only if it still holds the
// expected current status, so a concurrent transition loses cleanly.
func (s *Store) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "UPDATE payslips SET status = $1, updated_at = now() WHERE id = $2 AND status = $3", to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) EmployeeDetails(ctx context.Context, employeeID string) (string, string, string, error) {
	var name, department, position string
	err := s.DB.QueryRow(ctx, "SELECT name, department, COALESCE(position, '') FROM users WHERE employee_id = $1", employeeID).
		Scan(&name, &department, &position)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", "", "", err
	}
	return name, department, position, nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23505":
		switch pgErr.ConstraintName {
		case "payslips_employee_period_key":
			return ErrDuplicatePeriod
		case "payslips_reference_no_key":
			return ErrDuplicateReference
		}
	case "23503":
		return ErrEmployeeNotFound
	}
	return nil
}
