package services

import (
	"testing"

	"realestate-crm/installment"
	"realestate-crm/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allocFixture(t *testing.T) (models.PropertyFile, []models.Installment) {
	t.Helper()
	f := models.PropertyFile{ID: 1, TotalAmount: dec("1000"), DownPayment: dec("100")}
	items, err := installment.GenerateSchedule(f.TotalAmount, f.DownPayment, 3, day(2025, 1, 1), models.FrequencyMonthly)
	require.NoError(t, err)
	for i := range items {
		items[i].ID = uint(10 + i)
		items[i].FileID = f.ID
	}
	return f, items
}

func TestAllocate_TargetThenCarry(t *testing.T) {
	f, items := allocFixture(t)
	target := items[1].ID

	a, err := allocate(f, items, installment.Balance{}, allocRequest{
		Type: models.PaymentInstallment, InstallmentID: &target, Amount: dec("450"), Date: day(2025, 1, 20),
	}, OverpayCarry)
	require.NoError(t, err)

	require.Len(t, a.rows, 2)
	assert.Equal(t, target, *a.rows[0].InstallmentID)
	assert.Equal(t, items[2].ID, *a.rows[1].InstallmentID)
	assert.Equal(t, []int{1, 2}, a.touched)
	assert.Equal(t, models.InstallmentPaid, items[1].Status)
	assert.Equal(t, "150.00", items[2].PaidAmount.StringFixed(2))
	assert.True(t, items[0].PaidAmount.IsZero())
	assert.True(t, a.overpayment.IsZero())
}

func TestAllocate_CarryNeverMovesBackwards(t *testing.T) {
	f, items := allocFixture(t)
	last := items[2].ID

	a, err := allocate(f, items, installment.Balance{}, allocRequest{
		Type: models.PaymentInstallment, InstallmentID: &last, Amount: dec("400"), Date: day(2025, 1, 20),
	}, OverpayCarry)
	require.NoError(t, err)

	require.Len(t, a.rows, 1)
	assert.Equal(t, last, *a.rows[0].InstallmentID)
	assert.Equal(t, []int{2}, a.touched)
	assert.True(t, items[0].PaidAmount.IsZero())
	assert.True(t, items[1].PaidAmount.IsZero())
	assert.Equal(t, "100.00", a.overpayment.StringFixed(2))
}

func TestAllocate_TokenGoesToDownPaymentFirst(t *testing.T) {
	f, items := allocFixture(t)
	b := installment.Balance{DownPaymentPaid: dec("60")}

	a, err := allocate(f, items, b, allocRequest{Type: models.PaymentToken, Amount: dec("100"), Date: day(2025, 1, 2)}, OverpayReturn)
	require.NoError(t, err)
	require.Len(t, a.rows, 1)
	assert.Nil(t, a.rows[0].InstallmentID)
	assert.Equal(t, "40.00", a.rows[0].PrincipalAmount.StringFixed(2))
	assert.Equal(t, "60.00", a.overpayment.StringFixed(2))
	assert.Empty(t, a.touched)
}

func TestAllocate_Rejects(t *testing.T) {
	f, items := allocFixture(t)
	missing := uint(99)

	_, err := allocate(f, items, installment.Balance{}, allocRequest{
		Type: models.PaymentInstallment, InstallmentID: &missing, Amount: dec("1"), Date: day(2025, 1, 2),
	}, OverpayCarry)
	assert.Error(t, err)

	_, err = allocate(f, items, installment.Balance{}, allocRequest{
		Type: models.PaymentDownPayment, InstallmentID: &items[0].ID, Amount: dec("1"), Date: day(2025, 1, 2),
	}, OverpayCarry)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	for i := range items {
		items[i].Status = models.InstallmentWaived
	}
	_, err = allocate(f, items, installment.Balance{DownPaymentPaid: dec("100")}, allocRequest{
		Type: models.PaymentFull, Amount: dec("5"), Date: day(2025, 1, 2),
	}, OverpayCarry)
	assert.ErrorIs(t, err, ErrNothingDue)
}

func TestStamp(t *testing.T) {
	rows := make([]models.Payment, 3)
	stamp(rows, models.MethodOnline, "", "april", nil)
	for _, r := range rows {
		assert.Equal(t, rows[0].ReceiptNumber, r.Reference)
		assert.Equal(t, models.MethodOnline, r.PaymentMethod)
		assert.Equal(t, "april", r.Note)
	}
	assert.NotEqual(t, rows[0].ReceiptNumber, rows[1].ReceiptNumber)

	single := make([]models.Payment, 1)
	stamp(single, models.MethodCash, "", "", nil)
	assert.Empty(t, single[0].Reference)
}
