package services

import (
	"context"
	"testing"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, ps *PaymentService, in PostPayment) *Receipt {
	t.Helper()
	if in.Method == "" {
		in.Method = models.MethodCash
	}
	if in.Date.IsZero() {
		in.Date = day(2025, 2, 1)
	}
	r, err := ps.Post(context.Background(), in)
	require.NoError(t, err)
	return r
}

func assertBalanced(t *testing.T, m *memStore, fileID uint) {
	t.Helper()
	f := m.files[fileID]
	assert.True(t, f.RemainingAmount.Equal(f.TotalAmount.Sub(f.PaidAmount)),
		"remaining %s != total %s - paid %s", f.RemainingAmount, f.TotalAmount, f.PaidAmount)
	assert.False(t, f.RemainingAmount.IsNegative())
}

func TestPost_DownPayment(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("20000"), Type: models.PaymentDownPayment})
	require.Len(t, r.Payments, 1)
	assert.Nil(t, r.Payments[0].InstallmentID)
	assert.Equal(t, models.PaymentCompleted, r.Payments[0].Status)
	assert.Regexp(t, `^RCP-[0-9A-F]{10}$`, r.Payments[0].ReceiptNumber)
	assert.Equal(t, "20000.00", r.File.PaidAmount.StringFixed(2))
	assert.Equal(t, "80000.00", r.File.RemainingAmount.StringFixed(2))
	assert.True(t, r.Overpayment.IsZero())
	assertBalanced(t, m, d.ID)
}

func TestPost_ExactInstallment(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())
	first := m.fileInstallments(d.ID)[0]

	r := post(t, ps, PostPayment{FileID: d.ID, InstallmentID: &first.ID, Amount: dec("20000"), Type: models.PaymentInstallment})
	require.Len(t, r.Payments, 1)
	assert.True(t, r.Overpayment.IsZero())

	got := m.installments[first.ID]
	assert.Equal(t, models.InstallmentPaid, got.Status)
	assert.Equal(t, day(2025, 2, 1), *got.PaidDate)
	assert.Equal(t, 2, got.Version)
	assertBalanced(t, m, d.ID)
}

func TestPost_CarryOverpayment(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("50000"), Type: models.PaymentInstallment})
	require.Len(t, r.Payments, 3)
	assert.True(t, r.Overpayment.IsZero())
	ref := r.Payments[0].ReceiptNumber
	for _, p := range r.Payments {
		assert.Equal(t, ref, p.Reference)
	}

	items := m.fileInstallments(d.ID)
	assert.Equal(t, models.InstallmentPaid, items[0].Status)
	assert.Equal(t, models.InstallmentPaid, items[1].Status)
	assert.Equal(t, models.InstallmentPending, items[2].Status)
	assert.Equal(t, "10000.00", items[2].PaidAmount.StringFixed(2))
	assert.Equal(t, "50000.00", m.files[d.ID].PaidAmount.StringFixed(2))
	assertBalanced(t, m, d.ID)
}

func TestPost_TargetedCarryFlowsForward(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())
	third := m.fileInstallments(d.ID)[2]

	r := post(t, ps, PostPayment{FileID: d.ID, InstallmentID: &third.ID, Amount: dec("30000"), Type: models.PaymentInstallment})
	require.Len(t, r.Payments, 2)
	assert.True(t, r.Overpayment.IsZero())

	items := m.fileInstallments(d.ID)
	assert.True(t, items[0].PaidAmount.IsZero())
	assert.True(t, items[1].PaidAmount.IsZero())
	assert.Equal(t, models.InstallmentPaid, items[2].Status)
	assert.Equal(t, "20000.00", items[2].PaidAmount.StringFixed(2))
	assert.Equal(t, "10000.00", items[3].PaidAmount.StringFixed(2))
	assert.Equal(t, items[3].ID, *r.Payments[1].InstallmentID)
	assertBalanced(t, m, d.ID)
}

func TestPost_ReturnOverpayment(t *testing.T) {
	m := newMemStore()
	opts := testOptions()
	opts.Overpayment = OverpayReturn
	d := openFile(t, m, opts)
	ps := NewPaymentService(m, opts)

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("25000"), Type: models.PaymentInstallment, Reference: "CHQ-1"})
	require.Len(t, r.Payments, 1)
	assert.Equal(t, "5000.00", r.Overpayment.StringFixed(2))
	assert.Equal(t, "20000.00", r.Payments[0].Amount.StringFixed(2))
	assert.Equal(t, "CHQ-1", r.Payments[0].Reference)
	assert.Equal(t, "20000.00", m.files[d.ID].PaidAmount.StringFixed(2))

	post(t, ps, PostPayment{FileID: d.ID, Amount: dec("20000"), Type: models.PaymentDownPayment})
	_, err := ps.Post(context.Background(), PostPayment{FileID: d.ID, Amount: dec("1"), Type: models.PaymentDownPayment, Method: models.MethodCash})
	assert.ErrorIs(t, err, ErrNothingDue)
}

func TestPost_FullPaymentCompletesFile(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("100010"), Type: models.PaymentFull, Method: models.MethodBankTransfer})
	assert.Len(t, r.Payments, 5)
	assert.Equal(t, "10.00", r.Overpayment.StringFixed(2))
	assert.Equal(t, models.FileCompleted, r.File.Status)
	assert.True(t, r.File.RemainingAmount.IsZero())
	assert.Equal(t, models.InventorySold, m.assets[models.PlotRef(1)])
	for _, p := range r.Payments {
		assert.Equal(t, models.PaymentFull, p.PaymentType)
		assert.Equal(t, models.MethodBankTransfer, p.PaymentMethod)
	}

	_, err := ps.Post(context.Background(), PostPayment{FileID: d.ID, Amount: dec("1"), Type: models.PaymentInstallment, Method: models.MethodCash})
	assert.ErrorIs(t, err, ErrFileClosed)
}

func TestPost_FeesStayOutOfPaid(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("1500"), Type: models.PaymentTransferFee})
	assert.True(t, r.File.PaidAmount.IsZero())
	assert.Equal(t, "1500.00", r.File.FeesPaid.StringFixed(2))
	assert.Equal(t, "1500.00", r.Payments[0].FeeAmount.StringFixed(2))
	assertBalanced(t, m, d.ID)

	first := m.fileInstallments(d.ID)[0]
	_, err := ps.Post(context.Background(), PostPayment{FileID: d.ID, InstallmentID: &first.ID, Amount: dec("10"), Type: models.PaymentLateFee, Method: models.MethodCash})
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestPost_LateFeeOnInstallmentSplitsPrincipal(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	_, _, err := NewFileService(m, testOptions()).ApplyLateFees(context.Background(), d.ID)
	require.NoError(t, err)
	ps := NewPaymentService(m, testOptions())
	first := m.fileInstallments(d.ID)[0]

	r := post(t, ps, PostPayment{FileID: d.ID, InstallmentID: &first.ID, Amount: dec("20500"), Type: models.PaymentInstallment, Date: day(2025, 3, 5)})
	require.Len(t, r.Payments, 1)
	assert.Equal(t, "20000.00", r.Payments[0].PrincipalAmount.StringFixed(2))
	assert.Equal(t, "500.00", r.Payments[0].FeeAmount.StringFixed(2))
	assert.Equal(t, "20000.00", r.File.PaidAmount.StringFixed(2))
	assert.Equal(t, "500.00", r.File.FeesPaid.StringFixed(2))
	assert.Equal(t, models.InstallmentPaid, m.installments[first.ID].Status)
}

func TestPost_Validation(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())
	ctx := context.Background()

	bad := []PostPayment{
		{FileID: d.ID, Amount: dec("0"), Type: models.PaymentInstallment, Method: models.MethodCash},
		{FileID: d.ID, Amount: dec("10.001"), Type: models.PaymentInstallment, Method: models.MethodCash},
		{FileID: d.ID, Amount: dec("10"), Type: "refund", Method: models.MethodCash},
		{FileID: d.ID, Amount: dec("10"), Type: models.PaymentInstallment, Method: "barter"},
	}
	for _, in := range bad {
		_, err := ps.Post(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidPayment)
	}
	assert.Empty(t, m.payments)

	_, err := ps.Post(ctx, PostPayment{FileID: 999, Amount: dec("10"), Type: models.PaymentInstallment, Method: models.MethodCash})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	paid := m.fileInstallments(d.ID)[0]
	post(t, ps, PostPayment{FileID: d.ID, InstallmentID: &paid.ID, Amount: dec("20000"), Type: models.PaymentInstallment})
	_, err = ps.Post(ctx, PostPayment{FileID: d.ID, InstallmentID: &paid.ID, Amount: dec("1"), Type: models.PaymentInstallment, Method: models.MethodCash})
	assert.ErrorIs(t, err, installment.ErrInstallmentSettled)
}

func TestPendingPaymentLifecycle(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())
	ctx := context.Background()

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("30000"), Type: models.PaymentInstallment, Method: models.MethodCheque, Pending: true, Reference: "CHQ-778"})
	pending := r.Payments[0]
	assert.Equal(t, models.PaymentPending, pending.Status)
	assert.True(t, m.files[d.ID].PaidAmount.IsZero())

	confirmed, err := ps.Confirm(ctx, pending.ID)
	require.NoError(t, err)
	require.Len(t, confirmed.Payments, 2)
	assert.Equal(t, pending.ID, confirmed.Payments[0].ID)
	assert.Equal(t, models.PaymentCompleted, m.payments[pending.ID].Status)
	assert.Equal(t, "20000.00", m.payments[pending.ID].Amount.StringFixed(2))
	assert.Equal(t, "CHQ-778", confirmed.Payments[1].Reference)
	assert.Equal(t, models.MethodCheque, confirmed.Payments[1].PaymentMethod)
	assert.Equal(t, "30000.00", m.files[d.ID].PaidAmount.StringFixed(2))
	assertBalanced(t, m, d.ID)

	_, err = ps.Confirm(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = ps.Bounce(ctx, pending.ID, "late")
	assert.ErrorIs(t, err, ErrInvalidState)

	r = post(t, ps, PostPayment{FileID: d.ID, Amount: dec("5000"), Type: models.PaymentDownPayment, Method: models.MethodCheque, Pending: true})
	bounced, err := ps.Bounce(ctx, r.Payments[0].ID, "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentBounced, bounced.Status)
	assert.Equal(t, "insufficient funds", bounced.Note)
	assert.Equal(t, "30000.00", m.files[d.ID].PaidAmount.StringFixed(2))
}

func TestReverse(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())
	ctx := context.Background()
	items := m.fileInstallments(d.ID)

	partial := post(t, ps, PostPayment{FileID: d.ID, InstallmentID: &items[0].ID, Amount: dec("5000"), Type: models.PaymentInstallment}).Payments[0]
	r, err := ps.Reverse(ctx, partial.ID, "entered twice")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentReversed, r.Payments[0].Status)
	assert.True(t, m.installments[items[0].ID].PaidAmount.IsZero())
	assert.True(t, m.files[d.ID].PaidAmount.IsZero())
	assertBalanced(t, m, d.ID)

	_, err = ps.Reverse(ctx, partial.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	full := post(t, ps, PostPayment{FileID: d.ID, InstallmentID: &items[0].ID, Amount: dec("20000"), Type: models.PaymentInstallment}).Payments[0]
	_, err = ps.Reverse(ctx, full.ID, "")
	assert.ErrorIs(t, err, installment.ErrInstallmentSettled)
	assert.Equal(t, models.PaymentCompleted, m.payments[full.ID].Status)
}

func TestReverse_ReopensCompletedFile(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())

	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("100000"), Type: models.PaymentFull})
	require.Equal(t, models.FileCompleted, r.File.Status)
	down := r.Payments[0]
	require.Nil(t, down.InstallmentID)

	rev, err := ps.Reverse(context.Background(), down.ID, "cheque returned")
	require.NoError(t, err)
	assert.Equal(t, models.FileActive, rev.File.Status)
	assert.Equal(t, "20000.00", rev.File.RemainingAmount.StringFixed(2))
	assert.Equal(t, models.InventoryBooked, m.assets[models.PlotRef(1)])
}

func TestRemainingTracksPaidOverSequence(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())

	seq := []PostPayment{
		{Amount: dec("7000"), Type: models.PaymentToken},
		{Amount: dec("13000.50"), Type: models.PaymentDownPayment},
		{Amount: dec("250"), Type: models.PaymentLateFee},
		{Amount: dec("19999.50"), Type: models.PaymentInstallment},
		{Amount: dec("0.01"), Type: models.PaymentInstallment},
		{Amount: dec("33333.33"), Type: models.PaymentInstallment},
	}
	for _, in := range seq {
		in.FileID = d.ID
		post(t, ps, in)
		assertBalanced(t, m, d.ID)
	}
	f := m.files[d.ID]
	assert.Equal(t, "73333.34", f.PaidAmount.StringFixed(2))
	assert.Equal(t, "250.00", f.FeesPaid.StringFixed(2))
	assert.Equal(t, models.FileActive, f.Status)
}

func TestPost_RetriesVersionConflicts(t *testing.T) {
	m := newMemStore()
	d := openFile(t, m, testOptions())
	ps := NewPaymentService(m, testOptions())
	before := m.txCount

	m.conflicts = 2
	r := post(t, ps, PostPayment{FileID: d.ID, Amount: dec("20000"), Type: models.PaymentInstallment})
	assert.Equal(t, 3, m.txCount-before)
	assert.Len(t, r.Payments, 1)
	assert.Len(t, m.payments, 1)
	assert.Equal(t, "20000.00", m.files[d.ID].PaidAmount.StringFixed(2))

	m.conflicts = 3
	_, err := ps.Post(context.Background(), PostPayment{FileID: d.ID, Amount: dec("20000"), Type: models.PaymentInstallment, Method: models.MethodCash})
	assert.ErrorIs(t, err, repository.ErrConcurrentModification)
	assert.Len(t, m.payments, 1, "failed attempts leave nothing behind")
	assert.Equal(t, models.InstallmentPending, m.fileInstallments(d.ID)[1].Status)
}
