package repository

import (
	"context"
	"fmt"
	"time"

	"realestate-crm/models"

	"github.com/shopspring/decimal"
)

// Row types returned by the report queries.

type OverdueRow struct {
	InstallmentID     uint                     `json:"installment_id"`
	FileID            uint                     `json:"file_id"`
	FileNumber        string                   `json:"file_number"`
	ClientName        string                   `json:"client_name"`
	ClientPhone       string                   `json:"client_phone"`
	InstallmentNumber int                      `json:"installment_number"`
	DueDate           time.Time                `json:"due_date"`
	Amount            decimal.Decimal          `json:"amount"`
	PaidAmount        decimal.Decimal          `json:"paid_amount"`
	LateFee           decimal.Decimal          `json:"late_fee"`
	DiscountAmount    decimal.Decimal          `json:"discount_amount"`
	Status            models.InstallmentStatus `json:"status"`
}

type PaymentRow struct {
	ID              uint                 `json:"id"`
	ReceiptNumber   string               `json:"receipt_number"`
	FileNumber      string               `json:"file_number"`
	ClientName      string               `json:"client_name"`
	PaymentDate     time.Time            `json:"payment_date"`
	PaymentType     models.PaymentType   `json:"payment_type"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	Status          models.PaymentStatus `json:"status"`
	Amount          decimal.Decimal      `json:"amount"`
	PrincipalAmount decimal.Decimal      `json:"principal_amount"`
	FeeAmount       decimal.Decimal      `json:"fee_amount"`
	Reference       string               `json:"reference"`
}

type FileTotalRow struct {
	Status    models.FileStatus `json:"status"`
	Files     int64             `json:"files"`
	Total     decimal.Decimal   `json:"total"`
	Paid      decimal.Decimal   `json:"paid"`
	Remaining decimal.Decimal   `json:"remaining"`
	Fees      decimal.Decimal   `json:"fees"`
}

type CommissionRow struct {
	DealerID   uint            `json:"dealer_id"`
	DealerName string          `json:"dealer_name"`
	Deals      int64           `json:"deals"`
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission"`
}

type ExpenseRow struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// Period bounds report queries by calendar date, both ends inclusive.
// Zero bounds are open.
type Period struct {
	From time.Time
	To   time.Time
}

func (s *GormStore) OverdueInstallments(ctx context.Context, asOf time.Time) ([]OverdueRow, error) {
	var rows []OverdueRow
	err := s.db.WithContext(ctx).Table("installments AS i").
		Select(`i.id AS installment_id, i.file_id, f.file_number, c.name AS client_name, c.phone AS client_phone,
			i.installment_number, i.due_date, i.amount, i.paid_amount, i.late_fee, i.discount_amount, i.status`).
		Joins("JOIN property_files f ON f.id = i.file_id").
		Joins("JOIN clients c ON c.id = f.client_id").
		Where("i.status IN ? AND i.due_date < ?",
			[]models.InstallmentStatus{models.InstallmentPending, models.InstallmentOverdue}, asOf).
		Where("f.status IN ?", []models.FileStatus{models.FileActive, models.FileDefaulted}).
		Order("i.due_date, i.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("overdue report: %w", err)
	}
	return rows, nil
}

func (s *GormStore) PaymentsBetween(ctx context.Context, p Period) ([]PaymentRow, error) {
	q := s.db.WithContext(ctx).Table("payments AS p").
		Select(`p.id, p.receipt_number, f.file_number, c.name AS client_name, p.payment_date, p.payment_type,
			p.payment_method, p.status, p.amount, p.principal_amount, p.fee_amount, p.reference`).
		Joins("JOIN property_files f ON f.id = p.file_id").
		Joins("JOIN clients c ON c.id = f.client_id")
	if !p.From.IsZero() {
		q = q.Where("p.payment_date >= ?", p.From)
	}
	if !p.To.IsZero() {
		q = q.Where("p.payment_date <= ?", p.To)
	}
	var rows []PaymentRow
	if err := q.Order("p.payment_date, p.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("payments report: %w", err)
	}
	return rows, nil
}

func (s *GormStore) FileTotals(ctx context.Context) ([]FileTotalRow, error) {
	var rows []FileTotalRow
	err := s.db.WithContext(ctx).Model(&models.PropertyFile{}).
		Select(`status, COUNT(*) AS files, COALESCE(SUM(total_amount), 0) AS total,
			COALESCE(SUM(paid_amount), 0) AS paid, COALESCE(SUM(remaining_amount), 0) AS remaining,
			COALESCE(SUM(fees_paid), 0) AS fees`).
		Group("status").Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("file totals: %w", err)
	}
	return rows, nil
}

func (s *GormStore) DealerCommissions(ctx context.Context, p Period) ([]CommissionRow, error) {
	q := s.db.WithContext(ctx).Table("deals AS d").
		Select(`d.dealer_id, r.name AS dealer_name, COUNT(*) AS deals,
			COALESCE(SUM(d.amount), 0) AS amount, COALESCE(SUM(d.commission_amount), 0) AS commission`).
		Joins("JOIN dealers r ON r.id = d.dealer_id").
		Where("d.status IN ?", []models.DealStatus{models.DealConfirmed, models.DealConverted})
	if !p.From.IsZero() {
		q = q.Where("d.deal_date >= ?", p.From)
	}
	if !p.To.IsZero() {
		q = q.Where("d.deal_date <= ?", p.To)
	}
	var rows []CommissionRow
	if err := q.Group("d.dealer_id, r.name").Order("commission DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("dealer commissions: %w", err)
	}
	return rows, nil
}

func (s *GormStore) ExpenseTotals(ctx context.Context, p Period) ([]ExpenseRow, error) {
	q := s.db.WithContext(ctx).Model(&models.Expense{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total")
	if !p.From.IsZero() {
		q = q.Where("expense_date >= ?", p.From)
	}
	if !p.To.IsZero() {
		q = q.Where("expense_date <= ?", p.To)
	}
	var rows []ExpenseRow
	if err := q.Group("category").Order("total DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("expense totals: %w", err)
	}
	return rows, nil
}
