package installment

import (
	"time"

	"realestate-crm/models"

	"github.com/shopspring/decimal"
)

// MaxInstallments bounds a single plan (50 years of monthly payments).
const MaxInstallments = 600

// GenerateSchedule splits total-down into count installments due one period
// apart, starting one period after start. Every installment carries the same
// cent-floored amount except the last, which absorbs the remainder so the
// amounts sum exactly to total-down.
func GenerateSchedule(total, down decimal.Decimal, count int, start time.Time, freq models.Frequency) ([]models.Installment, error) {
	switch {
	case !total.IsPositive():
		return nil, invalidInput("total amount must be positive")
	case down.IsNegative():
		return nil, invalidInput("down payment must not be negative")
	case down.GreaterThanOrEqual(total):
		return nil, invalidInput("down payment must be less than total amount")
	case count <= 0:
		return nil, invalidInput("installment count must be at least 1")
	case count > MaxInstallments:
		return nil, invalidInput("installment count must not exceed %d", MaxInstallments)
	case !freq.Valid():
		return nil, invalidInput("unknown frequency %q", freq)
	case start.IsZero():
		return nil, invalidInput("start date is required")
	case !twoPlaces(total) || !twoPlaces(down):
		return nil, invalidInput("amounts are limited to 2 decimal places")
	}

	remaining := total.Sub(down)
	cents := remaining.Shift(2).IntPart()
	n := int64(count)
	if cents < n {
		return nil, invalidInput("remaining amount %s is too small for %d installments", remaining.StringFixed(2), count)
	}

	base := decimal.New(cents/n, -2)
	last := remaining.Sub(base.Mul(decimal.NewFromInt(n - 1)))
	start = DateOnly(start)

	items := make([]models.Installment, 0, count)
	for i := 1; i <= count; i++ {
		amount := base
		if i == count {
			amount = last
		}
		items = append(items, models.Installment{
			InstallmentNumber: i,
			Amount:            amount,
			DueDate:           AddMonthsClamped(start, i*freq.Months()),
			PaidAmount:        decimal.Zero,
			LateFee:           decimal.Zero,
			DiscountAmount:    decimal.Zero,
			Status:            models.InstallmentPending,
			Version:           1,
		})
	}
	return items, nil
}

// Sum adds up installment amounts.
func Sum(items []models.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

func twoPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
