package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyMonths(t *testing.T) {
	assert.Equal(t, 1, FrequencyMonthly.Months())
	assert.Equal(t, 3, FrequencyQuarterly.Months())
	assert.Equal(t, 12, FrequencyYearly.Months())
	assert.False(t, Frequency("weekly").Valid())
	assert.False(t, Frequency("").Valid())
}

func TestFileStatusTransitions(t *testing.T) {
	assert.True(t, FileActive.CanBecome(FileDefaulted))
	assert.True(t, FileActive.CanBecome(FileCancelled))
	assert.True(t, FileDefaulted.CanBecome(FileActive))
	assert.False(t, FileActive.CanBecome(FileCompleted))
	assert.False(t, FileCompleted.CanBecome(FileActive))
	assert.False(t, FileCancelled.CanBecome(FileActive))

	assert.True(t, FileCompleted.Closed())
	assert.True(t, FileCancelled.Closed())
	assert.False(t, FileDefaulted.Closed())
}

func TestDealStatusTransitions(t *testing.T) {
	assert.True(t, DealPending.CanBecome(DealConfirmed))
	assert.True(t, DealConfirmed.CanBecome(DealCancelled))
	assert.False(t, DealPending.CanBecome(DealConverted))
	assert.False(t, DealConverted.CanBecome(DealPending))
	assert.False(t, DealCancelled.CanBecome(DealConfirmed))
}

func TestPaymentTypeIsFee(t *testing.T) {
	assert.True(t, PaymentLateFee.IsFee())
	assert.True(t, PaymentTransferFee.IsFee())
	assert.False(t, PaymentToken.IsFee())
	assert.False(t, PaymentType("refund").Valid())
}

func TestAssetRef(t *testing.T) {
	require.NoError(t, PlotRef(4).Validate())
	require.NoError(t, PropertyRef(9).Validate())
	assert.Equal(t, "plot:4", PlotRef(4).String())

	assert.ErrorIs(t, AssetRef{Kind: "car", ID: 1}.Validate(), ErrInvalidAsset)
	assert.ErrorIs(t, AssetRef{Kind: AssetPlot}.Validate(), ErrInvalidAsset)
	assert.True(t, AssetRef{}.IsZero())
}

func TestCommission(t *testing.T) {
	amount := decimal.RequireFromString("2500000")
	assert.Equal(t, "25000.00", Commission(amount, decimal.NewFromInt(1)).StringFixed(2))
	assert.Equal(t, "62500.00", Commission(amount, decimal.RequireFromString("2.5")).StringFixed(2))
	assert.Equal(t, "0.33", Commission(decimal.RequireFromString("33.33"), decimal.NewFromInt(1)).StringFixed(2))

	d := Deal{Amount: amount}
	d.ApplyCommission(decimal.RequireFromString("1.25"))
	assert.Equal(t, "31250.00", d.CommissionAmount.StringFixed(2))
	assert.Equal(t, "1.25", d.CommissionRate.String())
}

func TestLeadConversion(t *testing.T) {
	l := Lead{Name: "Asad", Phone: "0300", Email: "a@example.com", Status: LeadQualified}
	require.True(t, l.Convertible())

	c := l.ToClient("35202-1234567-1", "House 4")
	assert.Equal(t, "Asad", c.Name)
	assert.Equal(t, "35202-1234567-1", c.CNIC)
	assert.Equal(t, StatusActive, c.Status)

	l.Status = LeadConverted
	assert.False(t, l.Convertible())
	l.Status = LeadLost
	assert.False(t, l.Convertible())
}

func TestIdempotencyKeyExpired(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	assert.False(t, IdempotencyKey{}.Expired(now))
	assert.False(t, IdempotencyKey{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, IdempotencyKey{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
