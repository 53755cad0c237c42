package services

import (
	"fmt"
	"time"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"

	"github.com/shopspring/decimal"
)

type allocRequest struct {
	Type          models.PaymentType
	InstallmentID *uint
	Amount        decimal.Decimal
	Date          time.Time
}

// allocation is the set of payment rows one received amount turns into.
// touched lists the indexes of installments that changed.
type allocation struct {
	rows        []models.Payment
	touched     []int
	overpayment decimal.Decimal
}

// allocate distributes req over the file in memory. items is updated in
// place. Fees are charged on the file. Down payment and token money settles
// the down payment first. Installment money goes to the requested
// installment, or the first open one. With OverpayCarry the rest moves on to
// the later open installments in number order. A full payment always does.
func allocate(f models.PropertyFile, items []models.Installment, b installment.Balance, req allocRequest, policy OverpaymentPolicy) (allocation, error) {
	a := allocation{overpayment: decimal.Zero}
	day := installment.DateOnly(req.Date)
	left := req.Amount
	carry := policy == OverpayCarry

	if req.InstallmentID != nil && req.Type != models.PaymentInstallment {
		return a, fmt.Errorf("%w: %s payments are not bound to an installment", ErrInvalidPayment, req.Type)
	}

	switch req.Type {
	case models.PaymentLateFee, models.PaymentTransferFee:
		a.rows = append(a.rows, models.Payment{
			FileID:          f.ID,
			Amount:          left,
			PrincipalAmount: decimal.Zero,
			FeeAmount:       left,
			PaymentType:     req.Type,
			PaymentDate:     day,
			Status:          models.PaymentCompleted,
		})
		return a, nil

	case models.PaymentDownPayment, models.PaymentToken:
		left = a.downPayment(f, b, left, req.Type, day)
		if carry {
			var err error
			if left, err = a.installments(items, -1, left, req.Type, day, true); err != nil {
				return a, err
			}
		}

	case models.PaymentFull:
		left = a.downPayment(f, b, left, req.Type, day)
		var err error
		if left, err = a.installments(items, -1, left, req.Type, day, true); err != nil {
			return a, err
		}

	case models.PaymentInstallment:
		target := -1
		if req.InstallmentID != nil {
			for i := range items {
				if items[i].ID == *req.InstallmentID {
					target = i
					break
				}
			}
			if target < 0 {
				return a, fmt.Errorf("installment %d of file %d: %w", *req.InstallmentID, f.ID, repository.ErrNotFound)
			}
			if items[target].Status.Settled() {
				return a, fmt.Errorf("installment %d: %w", *req.InstallmentID, installment.ErrInstallmentSettled)
			}
		}
		var err error
		if left, err = a.installments(items, target, left, req.Type, day, carry); err != nil {
			return a, err
		}

	default:
		return a, fmt.Errorf("%w: unknown payment type %q", ErrInvalidPayment, req.Type)
	}

	if len(a.rows) == 0 {
		return a, ErrNothingDue
	}
	a.overpayment = left
	return a, nil
}

func (a *allocation) downPayment(f models.PropertyFile, b installment.Balance, left decimal.Decimal, typ models.PaymentType, day time.Time) decimal.Decimal {
	applied := decimal.Min(left, installment.DownPaymentOutstanding(f, b))
	if !applied.IsPositive() {
		return left
	}
	a.rows = append(a.rows, models.Payment{
		FileID:          f.ID,
		Amount:          applied,
		PrincipalAmount: applied,
		FeeAmount:       decimal.Zero,
		PaymentType:     typ,
		PaymentDate:     day,
		Status:          models.PaymentCompleted,
	})
	return left.Sub(applied)
}

// installments applies left to items[target] (when target >= 0) and then,
// if carry is set, to the open installments after it in order. Without a
// target it starts from the first open installment.
func (a *allocation) installments(items []models.Installment, target int, left decimal.Decimal, typ models.PaymentType, day time.Time, carry bool) (decimal.Decimal, error) {
	apply := func(i int) error {
		inst := installment.RecomputeOverdueStatus(items[i], day)
		res, err := installment.ApplyPayment(inst, left, day)
		if err != nil {
			return err
		}
		items[i] = res.Installment
		a.touched = append(a.touched, i)
		if res.Payment.Amount.IsPositive() {
			res.Payment.PaymentType = typ
			a.rows = append(a.rows, res.Payment)
		}
		left = res.Overpayment
		return nil
	}

	from := 0
	if target >= 0 {
		if err := apply(target); err != nil {
			return left, err
		}
		if !carry {
			return left, nil
		}
		from = target + 1
	}
	for i := from; i < len(items); i++ {
		if !left.IsPositive() {
			break
		}
		if items[i].Status.Settled() {
			continue
		}
		if err := apply(i); err != nil {
			return left, err
		}
		if !carry {
			break
		}
	}
	return left, nil
}
