package installment

import (
	"fmt"
	"time"

	"realestate-crm/models"

	"github.com/shopspring/decimal"
)

// Application is the outcome of applying money to one installment.
// Overpayment is the part of the amount the installment could not absorb;
// routing it is left to the caller.
type Application struct {
	Installment models.Installment
	Payment     models.Payment
	Overpayment decimal.Decimal
}

// TotalDue is amount + late fee - discount, never below zero.
func TotalDue(inst models.Installment) decimal.Decimal {
	due := inst.Amount.Add(inst.LateFee).Sub(inst.DiscountAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// Outstanding is what is still owed on the installment.
func Outstanding(inst models.Installment) decimal.Decimal {
	if inst.Status.Settled() {
		return decimal.Zero
	}
	out := TotalDue(inst).Sub(inst.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func principalDue(inst models.Installment) decimal.Decimal {
	p := inst.Amount.Sub(inst.DiscountAmount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// ApplyPayment applies amount to inst. Partial amounts accumulate in
// PaidAmount without changing the status; once the total due is covered the
// installment becomes paid on paidOn. The returned payment records the applied
// part split into principal (covered first) and late fee.
func ApplyPayment(inst models.Installment, amount decimal.Decimal, paidOn time.Time) (Application, error) {
	if !amount.IsPositive() {
		return Application{Installment: inst}, ErrInvalidAmount
	}
	if inst.Status.Settled() {
		return Application{Installment: inst}, ErrInstallmentSettled
	}

	applied := decimal.Min(amount, Outstanding(inst))
	pDue := principalDue(inst)
	principal := decimal.Min(inst.PaidAmount.Add(applied), pDue).Sub(decimal.Min(inst.PaidAmount, pDue))
	paidOn = DateOnly(paidOn)

	inst.PaidAmount = inst.PaidAmount.Add(applied)
	if inst.PaidAmount.GreaterThanOrEqual(TotalDue(inst)) {
		inst.Status = models.InstallmentPaid
		inst.PaidDate = &paidOn
	}

	id := inst.ID
	payment := models.Payment{
		FileID:          inst.FileID,
		InstallmentID:   &id,
		Amount:          applied,
		PrincipalAmount: principal,
		FeeAmount:       applied.Sub(principal),
		PaymentType:     models.PaymentInstallment,
		PaymentDate:     paidOn,
		Status:          models.PaymentCompleted,
	}
	return Application{
		Installment: inst,
		Payment:     payment,
		Overpayment: amount.Sub(applied),
	}, nil
}

// Unapply removes a completed, not yet settling, payment from inst.
func Unapply(inst models.Installment, p models.Payment) (models.Installment, error) {
	if inst.Status.Settled() {
		return inst, ErrInstallmentSettled
	}
	inst.PaidAmount = inst.PaidAmount.Sub(p.Amount)
	if inst.PaidAmount.IsNegative() {
		return inst, ErrBalanceInvariant
	}
	return inst, nil
}

// Discount sets the discount on an open installment. It may not push the
// total due below what is already paid. When the discounted total is
// covered the installment becomes paid on asOf.
func Discount(inst models.Installment, amount decimal.Decimal, asOf time.Time) (models.Installment, error) {
	if inst.Status.Settled() {
		return inst, ErrInstallmentSettled
	}
	ceiling := inst.Amount.Add(inst.LateFee).Sub(inst.PaidAmount)
	if amount.IsNegative() || !twoPlaces(amount) || amount.GreaterThan(ceiling) {
		return inst, fmt.Errorf("%w: discount %s must be between 0 and %s", ErrInvalidAmount, amount.String(), ceiling.StringFixed(2))
	}
	inst.DiscountAmount = amount
	if inst.PaidAmount.GreaterThanOrEqual(TotalDue(inst)) {
		day := DateOnly(asOf)
		inst.Status = models.InstallmentPaid
		inst.PaidDate = &day
	}
	return inst, nil
}
