package payslips

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeEmployee struct {
	name       string
	department string
	position   string
}

type fakeStore struct {
	employees map[string]fakeEmployee
	payslips  map[string]Payslip
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: map[string]fakeEmployee{
			"EMP-HR-001": {name: "Ama Mensah", department: "technical", position: "Engineer"},
		},
		payslips: map[string]Payslip{},
		nextID:   1,
	}
}

func (f *fakeStore) Insert(_ context.Context, payslip Payslip) (Payslip, error) {
	if _, ok := f.employees[payslip.EmployeeID]; !ok {
		return Payslip{}, ErrEmployeeNotFound
	}
	for _, existing := range f.payslips {
		if existing.EmployeeID == payslip.EmployeeID && existing.Month == payslip.Month && existing.Year == payslip.Year {
			return Payslip{}, ErrDuplicatePeriod
		}
		if payslip.ReferenceNo != "" && existing.ReferenceNo == payslip.ReferenceNo {
			return Payslip{}, ErrDuplicateReference
		}
	}
	payslip.ID = fmt.Sprintf("ps-%d", f.nextID)
	f.nextID++
	f.payslips[payslip.ID] = payslip
	return payslip, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Payslip, error) {
	payslip, ok := f.payslips[id]
	if !ok {
		return Payslip{}, ErrNotFound
	}
	return payslip, nil
}

func (f *fakeStore) GetByPeriod(_ context.Context, employeeID, month string, year int) (Payslip, error) {
	for _, payslip := range f.payslips {
		if payslip.EmployeeID == employeeID && payslip.Month == month && payslip.Year == year {
			return payslip, nil
		}
	}
	return Payslip{}, ErrNotFound
}

func (f *fakeStore) ListForEmployee(_ context.Context, employeeID string) ([]Payslip, error) {
	var out []Payslip
	for _, payslip := range f.payslips {
		if payslip.EmployeeID == employeeID {
			out = append(out, payslip)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAmounts(_ context.Context, payslip Payslip) error {
	if _, ok := f.payslips[payslip.ID]; !ok {
		return ErrNotFound
	}
	f.payslips[payslip.ID] = payslip
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	payslip, ok := f.payslips[id]
	if !ok || payslip.Status != from {
		return false, nil
	}
	payslip.Status = to
	f.payslips[id] = payslip
	return true, nil
}

func (f *fakeStore) EmployeeDetails(_ context.Context, employeeID string) (string, string, string, error) {
	employee, ok := f.employees[employeeID]
	if !ok {
		return "", "", "", ErrEmployeeNotFound
	}
	return employee.name, employee.department, employee.position, nil
}

func validCreateInput(t *testing.T) CreateInput {
	t.Helper()
	return CreateInput{
		EmployeeID: "EMP-HR-001",
		Month:      "January",
		Year:       2025,
		Amounts: Amounts{
			AnnualSalary: dec(t, "60000.00"),
			Earnings: Earnings{
				BasicSalaryAmount: dec(t, "5000.00"),
				FuelAllowance:     dec(t, "250.00"),
				Bonus:             dec(t, "500.00"),
			},
			Deductions: Deductions{
				SSFEmployee: dec(t, "275.00"),
				IncomeTax:   dec(t, "950.00"),
			},
		},
	}
}

func TestCreateDerivesTotalsAndDefaults(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Create(context.Background(), validCreateInput(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if created.Status != StatusDraft {
		t.Fatalf("expected draft status, got %s", created.Status)
	}
	if created.TotalEarnings.StringFixed(2) != "5750.00" {
		t.Fatalf("expected total earnings 5750.00, got %s", created.TotalEarnings.StringFixed(2))
	}
	if created.TotalDeductions.StringFixed(2) != "1225.00" {
		t.Fatalf("expected total deductions 1225.00, got %s", created.TotalDeductions.StringFixed(2))
	}
	if created.NetPay.StringFixed(2) != "4525.00" {
		t.Fatalf("expected net pay 4525.00, got %s", created.NetPay.StringFixed(2))
	}
	if created.Snapshot.EmployeeName != "Ama Mensah" || created.Snapshot.Department != "technical" {
		t.Fatalf("expected snapshot filled from live record, got %+v", created.Snapshot)
	}
	if created.Snapshot.StaffNo != "EMP-HR-001" {
		t.Fatalf("expected staff no default, got %q", created.Snapshot.StaffNo)
	}
	if created.Snapshot.Region != DefaultRegion {
		t.Fatalf("expected default region, got %q", created.Snapshot.Region)
	}
}

func TestCreateDuplicatePeriod(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, validCreateInput(t)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(ctx, validCreateInput(t))
	if !errors.Is(err, ErrDuplicatePeriod) {
		t.Fatalf("expected duplicate period, got %v", err)
	}
}

func TestCreateDuplicatePeriodCaseInsensitiveMonth(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, validCreateInput(t)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	input := validCreateInput(t)
	input.Month = "JANUARY"
	if _, err := svc.Create(ctx, input); !errors.Is(err, ErrDuplicatePeriod) {
		t.Fatalf("expected duplicate period for same month spelled differently, got %v", err)
	}
}

func TestCreateRejectsNegativeAmount(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	input := validCreateInput(t)
	input.Amounts.Deductions.Loans = dec(t, "-20.00")
	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if len(store.payslips) != 0 {
		t.Fatal("expected nothing persisted after rejection")
	}
}

func TestCreateRejectsUnknownMonth(t *testing.T) {
	svc := NewService(newFakeStore())
	input := validCreateInput(t)
	input.Month = "Thermidor"
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestCreateUnknownEmployee(t *testing.T) {
	svc := NewService(newFakeStore())
	input := validCreateInput(t)
	input.EmployeeID = "EMP-HR-404"
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected employee not found, got %v", err)
	}
}

func TestCreateDuplicateReference(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	input := validCreateInput(t)
	input.ReferenceNo = "REF-2025-01"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := validCreateInput(t)
	second.Month = "February"
	second.ReferenceNo = "REF-2025-01"
	if _, err := svc.Create(ctx, second); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected duplicate reference, got %v", err)
	}
}

func TestAdvanceStatus(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	approved, err := svc.AdvanceStatus(ctx, created.ID, StatusApproved)
	if err != nil {
		t.Fatalf("draft to approved failed: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}

	paid, err := svc.AdvanceStatus(ctx, created.ID, StatusPaid)
	if err != nil {
		t.Fatalf("approved to paid failed: %v", err)
	}
	if paid.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}

	if _, err := svc.AdvanceStatus(ctx, created.ID, StatusDraft); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for paid to draft, got %v", err)
	}
}

func TestAdvanceStatusSkippingApprovedFails(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.AdvanceStatus(ctx, created.ID, StatusPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for draft to paid, got %v", err)
	}
}

func TestRecomputeAmounts(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	amounts := validCreateInput(t).Amounts
	amounts.Earnings.Bonus = dec(t, "1000.00")
	amounts.Deductions.Loans = dec(t, "150.00")

	updated, err := svc.RecomputeAmounts(ctx, created.ID, amounts)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if updated.TotalEarnings.StringFixed(2) != "6250.00" {
		t.Fatalf("expected total earnings 6250.00, got %s", updated.TotalEarnings.StringFixed(2))
	}
	if updated.TotalDeductions.StringFixed(2) != "1375.00" {
		t.Fatalf("expected total deductions 1375.00, got %s", updated.TotalDeductions.StringFixed(2))
	}
	if updated.NetPay.StringFixed(2) != "4875.00" {
		t.Fatalf("expected net pay 4875.00, got %s", updated.NetPay.StringFixed(2))
	}
	if !updated.NetPay.Equal(updated.TotalEarnings.Sub(updated.TotalDeductions)) {
		t.Fatal("aggregates disagree after recompute")
	}
}

func TestRecomputeAmountsRejectsNegative(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	amounts := validCreateInput(t).Amounts
	amounts.Earnings.FuelAllowance = dec(t, "-5.00")
	if _, err := svc.RecomputeAmounts(ctx, created.ID, amounts); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	reloaded, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !reloaded.TotalEarnings.Equal(created.TotalEarnings) {
		t.Fatal("rejected recompute must not change stored totals")
	}
}

func TestGetByPeriodNormalizesMonth(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := svc.GetByPeriod(ctx, created.EmployeeID, "january", 2025)
	if err != nil {
		t.Fatalf("get by period failed: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected payslip %s, got %s", created.ID, found.ID)
	}

	if _, err := svc.GetByPeriod(ctx, created.EmployeeID, "January", 2024); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other year, got %v", err)
	}
}
