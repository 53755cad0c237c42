package installment

import (
	"fmt"

	"realestate-crm/models"

	"github.com/shopspring/decimal"
)

// Balance is the derived money state of a file.
type Balance struct {
	Paid            decimal.Decimal
	Remaining       decimal.Decimal
	Fees            decimal.Decimal
	DownPaymentPaid decimal.Decimal
}

// Summarize derives the balance of a file from its payments. Only completed
// payments count. Principal not bound to an installment settles the down
// payment. Fee portions are kept apart so Paid never includes charges.
func Summarize(file models.PropertyFile, payments []models.Payment) (Balance, error) {
	b := Balance{Paid: decimal.Zero, Fees: decimal.Zero, DownPaymentPaid: decimal.Zero}
	for _, p := range payments {
		if p.Status != models.PaymentCompleted {
			continue
		}
		b.Paid = b.Paid.Add(p.PrincipalAmount)
		b.Fees = b.Fees.Add(p.FeeAmount)
		if p.InstallmentID == nil {
			b.DownPaymentPaid = b.DownPaymentPaid.Add(p.PrincipalAmount)
		}
	}
	b.Remaining = file.TotalAmount.Sub(b.Paid)
	if b.Remaining.IsNegative() {
		return b, fmt.Errorf("%w: file %d paid %s of %s", ErrBalanceInvariant, file.ID, b.Paid.StringFixed(2), file.TotalAmount.StringFixed(2))
	}
	return b, nil
}

// DownPaymentOutstanding is the part of the down payment still unpaid.
func DownPaymentOutstanding(file models.PropertyFile, b Balance) decimal.Decimal {
	out := file.DownPayment.Sub(b.DownPaymentPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// ApplyBalance copies the derived totals onto the file.
func ApplyBalance(file *models.PropertyFile, b Balance) {
	file.PaidAmount = b.Paid
	file.RemainingAmount = b.Remaining
	file.FeesPaid = b.Fees
}

// Settled reports whether the down payment is covered and every installment
// is paid or waived.
func Settled(file models.PropertyFile, b Balance, items []models.Installment) bool {
	if DownPaymentOutstanding(file, b).IsPositive() {
		return false
	}
	for _, it := range items {
		if !it.Status.Settled() {
			return false
		}
	}
	return true
}
