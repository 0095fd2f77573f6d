package payslips

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, payslip Payslip) (Payslip, error)
	Get(ctx context.Context, id string) (Payslip, error)
	GetByPeriod(ctx context.Context, employeeID, month string, year int) (Payslip, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]Payslip, error)
	UpdateAmounts(ctx context.Context, payslip Payslip) error
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	EmployeeDetails(ctx context.Context, employeeID string) (name, department, position string, err error)
}
