package installment

import (
	"time"

	"realestate-crm/models"

	"github.com/shopspring/decimal"
)

// LateFeePolicy decides the late fee of an installment as of a date. The
// calculator never applies one on its own.
type LateFeePolicy interface {
	Fee(inst models.Installment, asOf time.Time) decimal.Decimal
}

// FlatPolicy charges Amount once the installment is more than GraceDays late.
type FlatPolicy struct {
	Amount    decimal.Decimal
	GraceDays int
}

func (p FlatPolicy) Fee(inst models.Installment, asOf time.Time) decimal.Decimal {
	if inst.Status.Settled() {
		return inst.LateFee
	}
	if RecomputeOverdueStatus(inst, asOf).DaysOverdue <= p.GraceDays {
		return decimal.Zero
	}
	return p.Amount
}

// PerDayPolicy charges Rate for every day past GraceDays, up to Cap when Cap
// is positive.
type PerDayPolicy struct {
	Rate      decimal.Decimal
	GraceDays int
	Cap       decimal.Decimal
}

func (p PerDayPolicy) Fee(inst models.Installment, asOf time.Time) decimal.Decimal {
	if inst.Status.Settled() {
		return inst.LateFee
	}
	days := RecomputeOverdueStatus(inst, asOf).DaysOverdue - p.GraceDays
	if days <= 0 {
		return decimal.Zero
	}
	fee := p.Rate.Mul(decimal.NewFromInt(int64(days))).Round(2)
	if p.Cap.IsPositive() && fee.GreaterThan(p.Cap) {
		return p.Cap
	}
	return fee
}

// ApplyLateFee stores the policy's fee on an open installment, together with
// its recomputed overdue status, and reports whether anything changed. The
// fee never drops below the fee portion already paid.
func ApplyLateFee(inst models.Installment, policy LateFeePolicy, asOf time.Time) (models.Installment, bool) {
	if inst.Status.Settled() || policy == nil {
		return inst, false
	}
	next := RecomputeOverdueStatus(inst, asOf)
	fee := policy.Fee(next, asOf)
	if paidFee := inst.PaidAmount.Sub(principalDue(inst)); paidFee.GreaterThan(fee) {
		fee = paidFee
	}
	next.LateFee = fee
	changed := !fee.Equal(inst.LateFee) || next.Status != inst.Status || next.DaysOverdue != inst.DaysOverdue
	return next, changed
}
