package payslips

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF writes a printable rendition of a payslip. Figures come from the
// stored aggregates, never recomputed here.
func RenderPDF(w io.Writer, payslip Payslip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", payslip.Snapshot.EmployeeName, payslip.Snapshot.StaffNo))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", payslip.Snapshot.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", payslip.Month, payslip.Year))
	pdf.Ln(7)
	if payslip.ReferenceNo != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Reference: %s", payslip.ReferenceNo))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []struct {
		label string
		value string
	}{
		{"Basic Salary", payslip.Earnings.BasicSalaryAmount.StringFixed(2)},
		{"Fuel Allowance", payslip.Earnings.FuelAllowance.StringFixed(2)},
		{"Housing Allowance", payslip.Earnings.HousingAllowance.StringFixed(2)},
		{"Transport Allowance", payslip.Earnings.TransportAllowance.StringFixed(2)},
		{"Utility Subsidy", payslip.Earnings.UtilitySubsidy.StringFixed(2)},
		{"Maintenance Allowance", payslip.Earnings.MaintenanceAllowance.StringFixed(2)},
		{"Bonus", payslip.Earnings.Bonus.StringFixed(2)},
		{"Other Allowances", payslip.Earnings.OtherAllowances.StringFixed(2)},
	} {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %s", line.label, line.value))
		pdf.Ln(6)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []struct {
		label string
		value string
	}{
		{"SSF (Employee)", payslip.Deductions.SSFEmployee.StringFixed(2)},
		{"Income Tax", payslip.Deductions.IncomeTax.StringFixed(2)},
		{"Provident Fund", payslip.Deductions.ProvidentFund.StringFixed(2)},
		{"Loans", payslip.Deductions.Loans.StringFixed(2)},
		{"Other Deductions", payslip.Deductions.OtherDeductions.StringFixed(2)},
	} {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %s", line.label, line.value))
		pdf.Ln(6)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total Earnings: %s", payslip.TotalEarnings.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total Deductions: %s", payslip.TotalDeductions.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net Pay: %s", payslip.NetPay.StringFixed(2)))

	return pdf.Output(w)
}
