package installment

import (
	"fmt"
	"time"

	"realestate-crm/models"
)

// RecomputeOverdueStatus derives status and days overdue from the due date
// and asOf. Paid and waived installments are returned unchanged. Overdue
// counting starts the day after the due date.
func RecomputeOverdueStatus(inst models.Installment, asOf time.Time) models.Installment {
	if inst.Status.Settled() {
		return inst
	}
	if days := DaysBetween(inst.DueDate, asOf); days > 0 {
		inst.Status = models.InstallmentOverdue
		inst.DaysOverdue = days
		return inst
	}
	inst.Status = models.InstallmentPending
	inst.DaysOverdue = 0
	return inst
}

// RecomputeAll applies RecomputeOverdueStatus to every item and reports
// which indexes changed.
func RecomputeAll(items []models.Installment, asOf time.Time) []int {
	var changed []int
	for i, it := range items {
		next := RecomputeOverdueStatus(it, asOf)
		if next.Status != it.Status || next.DaysOverdue != it.DaysOverdue {
			items[i] = next
			changed = append(changed, i)
		}
	}
	return changed
}

var transitions = map[models.InstallmentStatus][]models.InstallmentStatus{
	models.InstallmentPending: {models.InstallmentPaid, models.InstallmentOverdue, models.InstallmentWaived},
	models.InstallmentOverdue: {models.InstallmentPaid, models.InstallmentWaived},
}

// CanTransition reports whether an explicit status change is allowed.
// Nothing leaves paid or waived.
func CanTransition(from, to models.InstallmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Waive marks an open installment as waived.
func Waive(inst models.Installment) (models.Installment, error) {
	if !CanTransition(inst.Status, models.InstallmentWaived) {
		return inst, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inst.Status, models.InstallmentWaived)
	}
	inst.Status = models.InstallmentWaived
	return inst, nil
}
