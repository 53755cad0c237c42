package installment_test

import (
	"testing"
	"time"

	"realestate-crm/installment"
	"realestate-crm/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func amounts(items []models.Installment) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Amount.StringFixed(2)
	}
	return out
}

func dueDates(items []models.Installment) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DueDate.Format(time.DateOnly)
	}
	return out
}

func TestGenerateSchedule(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		down      string
		count     int
		start     time.Time
		freq      models.Frequency
		wantAmts  []string
		wantDates []string
	}{
		{
			name:      "even monthly split after down payment",
			total:     "100000",
			down:      "20000",
			count:     4,
			start:     date(2025, 1, 1),
			freq:      models.FrequencyMonthly,
			wantAmts:  []string{"20000.00", "20000.00", "20000.00", "20000.00"},
			wantDates: []string{"2025-02-01", "2025-03-01", "2025-04-01", "2025-05-01"},
		},
		{
			name:      "month end clamps and recovers",
			total:     "100000",
			down:      "0",
			count:     3,
			start:     date(2025, 1, 31),
			freq:      models.FrequencyMonthly,
			wantAmts:  []string{"33333.33", "33333.33", "33333.34"},
			wantDates: []string{"2025-02-28", "2025-03-31", "2025-04-30"},
		},
		{
			name:      "leap february",
			total:     "3000",
			down:      "0",
			count:     2,
			start:     date(2024, 1, 31),
			freq:      models.FrequencyMonthly,
			wantAmts:  []string{"1500.00", "1500.00"},
			wantDates: []string{"2024-02-29", "2024-03-31"},
		},
		{
			name:      "last installment absorbs rounding",
			total:     "100",
			down:      "0",
			count:     3,
			start:     date(2025, 1, 1),
			freq:      models.FrequencyMonthly,
			wantAmts:  []string{"33.33", "33.33", "33.34"},
			wantDates: []string{"2025-02-01", "2025-03-01", "2025-04-01"},
		},
		{
			name:      "quarterly",
			total:     "1200.50",
			down:      "200.50",
			count:     4,
			start:     date(2025, 11, 30),
			freq:      models.FrequencyQuarterly,
			wantAmts:  []string{"250.00", "250.00", "250.00", "250.00"},
			wantDates: []string{"2026-02-28", "2026-05-30", "2026-08-30", "2026-11-30"},
		},
		{
			name:      "yearly from leap day",
			total:     "10",
			down:      "1",
			count:     2,
			start:     date(2024, 2, 29),
			freq:      models.FrequencyYearly,
			wantAmts:  []string{"4.50", "4.50"},
			wantDates: []string{"2025-02-28", "2026-02-28"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := installment.GenerateSchedule(d(tt.total), d(tt.down), tt.count, tt.start, tt.freq)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmts, amounts(got))
			assert.Equal(t, tt.wantDates, dueDates(got))
			for i, it := range got {
				assert.Equal(t, i+1, it.InstallmentNumber)
				assert.Equal(t, models.InstallmentPending, it.Status)
				assert.Nil(t, it.PaidDate)
				assert.Zero(t, it.DaysOverdue)
			}
		})
	}
}

func TestGenerateSchedule_SumsExactly(t *testing.T) {
	totals := []string{"100", "0.10", "999999.99", "12345.67", "7"}
	downs := []string{"0", "0.01", "3.33"}
	for _, total := range totals {
		for _, down := range downs {
			if d(down).GreaterThanOrEqual(d(total)) {
				continue
			}
			for count := 1; count <= 10; count++ {
				got, err := installment.GenerateSchedule(d(total), d(down), count, date(2025, 3, 15), models.FrequencyMonthly)
				if err != nil {
					assert.ErrorIs(t, err, installment.ErrInvalidScheduleInput)
					continue
				}
				want := d(total).Sub(d(down))
				assert.True(t, installment.Sum(got).Equal(want), "total=%s down=%s n=%d sum=%s", total, down, count, installment.Sum(got))
				for i := 1; i < len(got); i++ {
					assert.True(t, got[i].DueDate.After(got[i-1].DueDate))
				}
			}
		}
	}
}

func TestGenerateSchedule_InvalidInput(t *testing.T) {
	start := date(2025, 1, 1)
	tests := []struct {
		name  string
		total string
		down  string
		count int
		start time.Time
		freq  models.Frequency
	}{
		{"down payment equals total", "1000", "1000", 4, start, models.FrequencyMonthly},
		{"down payment exceeds total", "1000", "1500", 4, start, models.FrequencyMonthly},
		{"zero total", "0", "0", 4, start, models.FrequencyMonthly},
		{"negative down payment", "1000", "-1", 4, start, models.FrequencyMonthly},
		{"zero installments", "1000", "0", 0, start, models.FrequencyMonthly},
		{"negative installments", "1000", "0", -3, start, models.FrequencyMonthly},
		{"too many installments", "100000", "0", installment.MaxInstallments + 1, start, models.FrequencyMonthly},
		{"unknown frequency", "1000", "0", 4, start, models.Frequency("weekly")},
		{"missing start date", "1000", "0", 4, time.Time{}, models.FrequencyMonthly},
		{"sub-cent amount", "1000.005", "0", 4, start, models.FrequencyMonthly},
		{"fewer cents than installments", "0.02", "0", 3, start, models.FrequencyMonthly},
		{"remainder below one cent each", "1.02", "1.00", 3, start, models.FrequencyMonthly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := installment.GenerateSchedule(d(tt.total), d(tt.down), tt.count, tt.start, tt.freq)
			assert.ErrorIs(t, err, installment.ErrInvalidScheduleInput)
			assert.Nil(t, got)
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	assert.Equal(t, date(2025, 2, 28), installment.AddMonthsClamped(date(2025, 1, 31), 1))
	assert.Equal(t, date(2025, 3, 31), installment.AddMonthsClamped(date(2025, 1, 31), 2))
	assert.Equal(t, date(2026, 1, 15), installment.AddMonthsClamped(date(2025, 12, 15), 1))
	assert.Equal(t, date(2025, 6, 30), installment.AddMonthsClamped(date(2024, 12, 31), 6))
	assert.Equal(t, date(2025, 1, 10), installment.AddMonthsClamped(time.Date(2025, 1, 10, 18, 30, 0, 0, time.UTC), 0))
}
