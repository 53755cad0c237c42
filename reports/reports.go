package reports

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Source is the read side of the store the reports are built from.
type Source interface {
	OverdueInstallments(ctx context.Context, asOf time.Time) ([]repository.OverdueRow, error)
	PaymentsBetween(ctx context.Context, p repository.Period) ([]repository.PaymentRow, error)
	FileTotals(ctx context.Context) ([]repository.FileTotalRow, error)
	DealerCommissions(ctx context.Context, p repository.Period) ([]repository.CommissionRow, error)
	ExpenseTotals(ctx context.Context, p repository.Period) ([]repository.ExpenseRow, error)
}

const summaryKey = "reports:summary"

// Service builds reports. Cache may be nil, in which case every summary is
// read from the database.
type Service struct {
	src    Source
	cache  *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewService(src Source, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, cache: cache, ttl: ttl, now: time.Now, logger: logger}
}

type OverdueItem struct {
	repository.OverdueRow
	DaysOverdue int             `json:"days_overdue"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type OverdueReport struct {
	AsOf        time.Time       `json:"as_of"`
	Items       []OverdueItem   `json:"items"`
	Count       int             `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Overdue lists open installments due before asOf with their age and the
// amount still owed, recomputed as of that date.
func (s *Service) Overdue(ctx context.Context, asOf time.Time) (*OverdueReport, error) {
	asOf = installment.DateOnly(asOf)
	rows, err := s.src.OverdueInstallments(ctx, asOf)
	if err != nil {
		return nil, err
	}
	out := &OverdueReport{AsOf: asOf, Items: make([]OverdueItem, 0, len(rows)), Outstanding: decimal.Zero}
	for _, r := range rows {
		inst := installment.RecomputeOverdueStatus(models.Installment{
			Amount:         r.Amount,
			DueDate:        r.DueDate,
			PaidAmount:     r.PaidAmount,
			LateFee:        r.LateFee,
			DiscountAmount: r.DiscountAmount,
			Status:         r.Status,
		}, asOf)
		if inst.Status != models.InstallmentOverdue {
			continue
		}
		r.Status = inst.Status
		item := OverdueItem{OverdueRow: r, DaysOverdue: inst.DaysOverdue, Outstanding: installment.Outstanding(inst)}
		out.Items = append(out.Items, item)
		out.Outstanding = out.Outstanding.Add(item.Outstanding)
	}
	out.Count = len(out.Items)
	return out, nil
}

type PaymentReport struct {
	From      time.Time               `json:"from"`
	To        time.Time               `json:"to"`
	Payments  []repository.PaymentRow `json:"payments"`
	Collected decimal.Decimal         `json:"collected"`
	Principal decimal.Decimal         `json:"principal"`
	Fees      decimal.Decimal         `json:"fees"`
}

// Payments lists payments in the period. Totals count completed payments only.
func (s *Service) Payments(ctx context.Context, p repository.Period) (*PaymentReport, error) {
	rows, err := s.src.PaymentsBetween(ctx, p)
	if err != nil {
		return nil, err
	}
	out := &PaymentReport{From: p.From, To: p.To, Payments: rows,
		Collected: decimal.Zero, Principal: decimal.Zero, Fees: decimal.Zero}
	for _, r := range rows {
		if r.Status != models.PaymentCompleted {
			continue
		}
		out.Collected = out.Collected.Add(r.Amount)
		out.Principal = out.Principal.Add(r.PrincipalAmount)
		out.Fees = out.Fees.Add(r.FeeAmount)
	}
	return out, nil
}

type Summary struct {
	GeneratedAt    time.Time                 `json:"generated_at"`
	Files          []repository.FileTotalRow `json:"files"`
	FileCount      int64                     `json:"file_count"`
	TotalAmount    decimal.Decimal           `json:"total_amount"`
	PaidAmount     decimal.Decimal           `json:"paid_amount"`
	Remaining      decimal.Decimal           `json:"remaining_amount"`
	FeesCollected  decimal.Decimal           `json:"fees_collected"`
	OverdueCount   int                       `json:"overdue_count"`
	OverdueAmount  decimal.Decimal           `json:"overdue_amount"`
	ExpensesAmount decimal.Decimal           `json:"expenses_amount"`
}

// Summary aggregates files by status, today's overdue position and all-time
// expenses. Results are cached for the configured TTL when a cache is set.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if cached, ok := s.cachedSummary(ctx); ok {
		return cached, nil
	}

	files, err := s.src.FileTotals(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.Overdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	expenses, err := s.src.ExpenseTotals(ctx, repository.Period{})
	if err != nil {
		return nil, err
	}

	out := &Summary{
		GeneratedAt:    s.now().UTC(),
		Files:          files,
		TotalAmount:    decimal.Zero,
		PaidAmount:     decimal.Zero,
		Remaining:      decimal.Zero,
		FeesCollected:  decimal.Zero,
		OverdueCount:   overdue.Count,
		OverdueAmount:  overdue.Outstanding,
		ExpensesAmount: decimal.Zero,
	}
	for _, r := range files {
		out.FileCount += r.Files
		out.FeesCollected = out.FeesCollected.Add(r.Fees)
		out.PaidAmount = out.PaidAmount.Add(r.Paid)
		if r.Status == models.FileCancelled {
			continue
		}
		out.TotalAmount = out.TotalAmount.Add(r.Total)
		out.Remaining = out.Remaining.Add(r.Remaining)
	}
	for _, r := range expenses {
		out.ExpensesAmount = out.ExpensesAmount.Add(r.Total)
	}

	s.storeSummary(ctx, out)
	return out, nil
}

// InvalidateSummary drops the cached summary after writes that move money.
func (s *Service) InvalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryKey).Err(); err != nil {
		s.logger.Warn("summary cache invalidate failed", "error", err)
	}
}

func (s *Service) cachedSummary(ctx context.Context) (*Summary, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, summaryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("summary cache read failed", "error", err)
		}
		return nil, false
	}
	var out Summary
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Warn("summary cache entry unreadable", "error", err)
		return nil, false
	}
	return &out, true
}

func (s *Service) storeSummary(ctx context.Context, sum *Summary) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(sum)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("summary cache write failed", "error", err)
	}
}

type CommissionReport struct {
	From    time.Time                  `json:"from"`
	To      time.Time                  `json:"to"`
	Dealers []repository.CommissionRow `json:"dealers"`
	Total   decimal.Decimal            `json:"total"`
}

func (s *Service) DealerCommissions(ctx context.Context, p repository.Period) (*CommissionReport, error) {
	rows, err := s.src.DealerCommissions(ctx, p)
	if err != nil {
		return nil, err
	}
	out := &CommissionReport{From: p.From, To: p.To, Dealers: rows, Total: decimal.Zero}
	for _, r := range rows {
		out.Total = out.Total.Add(r.Commission)
	}
	return out, nil
}

type ExpenseReport struct {
	From       time.Time               `json:"from"`
	To         time.Time               `json:"to"`
	Categories []repository.ExpenseRow `json:"categories"`
	Total      decimal.Decimal         `json:"total"`
}

func (s *Service) Expenses(ctx context.Context, p repository.Period) (*ExpenseReport, error) {
	rows, err := s.src.ExpenseTotals(ctx, p)
	if err != nil {
		return nil, err
	}
	out := &ExpenseReport{From: p.From, To: p.To, Categories: rows, Total: decimal.Zero}
	for _, r := range rows {
		out.Total = out.Total.Add(r.Total)
	}
	return out, nil
}
