package services

import (
	"context"
	"fmt"
	"time"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"

	"github.com/shopspring/decimal"
)

// NewFile is the input for opening a file with an installment plan.
type NewFile struct {
	ClientID     uint
	DealerID     *uint
	DealID       *uint
	Asset        models.AssetRef
	TotalAmount  decimal.Decimal
	DownPayment  decimal.Decimal
	Installments int
	Frequency    models.Frequency
	StartDate    time.Time
}

// Plan is the payment plan chosen when a deal converts to a file.
type Plan struct {
	DownPayment  decimal.Decimal
	Installments int
	Frequency    models.Frequency
	StartDate    time.Time
}

// FileDetail is a file with its schedule as of the time it was read.
type FileDetail struct {
	models.PropertyFile
	DownPaymentOutstanding decimal.Decimal `json:"down_payment_outstanding"`
	OverdueCount           int             `json:"overdue_count"`
	OverdueAmount          decimal.Decimal `json:"overdue_amount"`
	AsOf                   time.Time       `json:"as_of"`
}

type FileService struct {
	store repository.Store
	opts  Options
}

func NewFileService(store repository.Store, opts Options) *FileService {
	return &FileService{store: store, opts: opts.withDefaults()}
}

// CreateFile opens a file directly, without a deal.
func (s *FileService) CreateFile(ctx context.Context, in NewFile) (*FileDetail, error) {
	var out *FileDetail
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		f, items, err := s.open(ctx, tx, in)
		if err != nil {
			return err
		}
		out = s.detail(*f, items, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("file created", "file", out.FileNumber, "asset", out.Asset.String(), "installments", out.TotalInstallments)
	return out, nil
}

// ConvertDeal turns a confirmed deal into a file. The deal, the file, its
// schedule and the asset status change commit together or not at all.
func (s *FileService) ConvertDeal(ctx context.Context, dealID uint, plan Plan) (*FileDetail, error) {
	var out *FileDetail
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		deal, err := tx.Deals().GetForUpdate(ctx, dealID)
		if err != nil {
			return err
		}
		if deal.Status != models.DealConfirmed {
			return fmt.Errorf("%w: deal %d is %s, only confirmed deals convert", ErrInvalidState, deal.ID, deal.Status)
		}

		f, items, err := s.open(ctx, tx, NewFile{
			ClientID:     deal.ClientID,
			DealerID:     deal.DealerID,
			DealID:       &deal.ID,
			Asset:        deal.Asset,
			TotalAmount:  deal.Amount,
			DownPayment:  plan.DownPayment,
			Installments: plan.Installments,
			Frequency:    plan.Frequency,
			StartDate:    plan.StartDate,
		})
		if err != nil {
			return err
		}

		deal.Status = models.DealConverted
		deal.FileID = &f.ID
		if err := tx.Deals().Update(ctx, deal); err != nil {
			return err
		}
		out = s.detail(*f, items, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("deal converted", "deal", dealID, "file", out.FileNumber)
	return out, nil
}

// open builds the schedule before writing anything, so invalid input never
// leaves rows behind even outside a transaction.
func (s *FileService) open(ctx context.Context, tx repository.Store, in NewFile) (*models.PropertyFile, []models.Installment, error) {
	if err := in.Asset.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", installment.ErrInvalidScheduleInput, err)
	}
	if in.ClientID == 0 {
		return nil, nil, fmt.Errorf("%w: client is required", installment.ErrInvalidScheduleInput)
	}
	items, err := installment.GenerateSchedule(in.TotalAmount, in.DownPayment, in.Installments, in.StartDate, in.Frequency)
	if err != nil {
		return nil, nil, err
	}

	status, err := tx.Assets().LockStatus(ctx, in.Asset)
	if err != nil {
		return nil, nil, err
	}
	if status != models.InventoryAvailable {
		return nil, nil, fmt.Errorf("%w: %s is %s", ErrAssetUnavailable, in.Asset, status)
	}

	now := s.opts.Now()
	f := &models.PropertyFile{
		FileNumber:        NewFileNumber(now),
		ClientID:          in.ClientID,
		DealID:            in.DealID,
		DealerID:          in.DealerID,
		Asset:             in.Asset,
		TotalAmount:       in.TotalAmount,
		DownPayment:       in.DownPayment,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   in.TotalAmount,
		FeesPaid:          decimal.Zero,
		TotalInstallments: in.Installments,
		InstallmentAmount: items[0].Amount,
		Frequency:         in.Frequency,
		StartDate:         installment.DateOnly(in.StartDate),
		Status:            models.FileActive,
		Version:           1,
	}
	if err := tx.Files().Create(ctx, f); err != nil {
		return nil, nil, err
	}
	for i := range items {
		items[i].FileID = f.ID
	}
	if err := tx.Installments().CreateBatch(ctx, items); err != nil {
		return nil, nil, err
	}
	if err := tx.Assets().SetStatus(ctx, in.Asset, models.InventoryBooked); err != nil {
		return nil, nil, err
	}
	return f, items, nil
}

// GetFile loads a file with installment statuses recomputed as of now. The
// recomputed statuses are not persisted.
func (s *FileService) GetFile(ctx context.Context, id uint) (*FileDetail, error) {
	f, err := s.store.Files().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Installments().ListByFile(ctx, id, false)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByFile(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(*f, items, payments), nil
}

func (s *FileService) ListFiles(ctx context.Context, filter repository.FileFilter) ([]models.PropertyFile, int64, error) {
	return s.store.Files().List(ctx, filter)
}

func (s *FileService) Payments(ctx context.Context, fileID uint) ([]models.Payment, error) {
	if _, err := s.store.Files().Get(ctx, fileID); err != nil {
		return nil, err
	}
	return s.store.Payments().ListByFile(ctx, fileID)
}

// SetStatus applies a manual status change. Cancelling releases the asset.
func (s *FileService) SetStatus(ctx context.Context, id uint, to models.FileStatus) (*models.PropertyFile, error) {
	var out *models.PropertyFile
	err := s.opts.retry(ctx, "file.status", func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, err := tx.Files().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if !f.Status.CanBecome(to) {
				return fmt.Errorf("%w: file %s cannot go from %s to %s", ErrInvalidState, f.FileNumber, f.Status, to)
			}
			f.Status = to
			if err := tx.Files().Update(ctx, f); err != nil {
				return err
			}
			if to == models.FileCancelled {
				if err := tx.Assets().SetStatus(ctx, f.Asset, models.InventoryAvailable); err != nil {
					return err
				}
			}
			out = f
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("file status changed", "file", out.FileNumber, "status", out.Status)
	return out, nil
}

// WaiveInstallment waives one open installment and completes the file when
// nothing else is owed.
func (s *FileService) WaiveInstallment(ctx context.Context, id uint) (*FileDetail, error) {
	var out *FileDetail
	err := s.opts.retry(ctx, "installment.waive", func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, items, idx, err := lockInstallment(ctx, tx, id)
			if err != nil {
				return err
			}
			waived, err := installment.Waive(items[idx])
			if err != nil {
				return err
			}
			if err := tx.Installments().Update(ctx, &waived); err != nil {
				return err
			}
			items[idx] = waived
			payments, err := settle(ctx, tx, f, items)
			if err != nil {
				return err
			}
			out = s.detail(*f, items, payments)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("installment waived", "installment", id, "file", out.FileNumber)
	return out, nil
}

// DiscountInstallment sets the discount on one open installment. A discount
// that covers what is left settles the installment, and the file too when
// nothing else is owed.
func (s *FileService) DiscountInstallment(ctx context.Context, id uint, amount decimal.Decimal) (*FileDetail, error) {
	var out *FileDetail
	err := s.opts.retry(ctx, "installment.discount", func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, items, idx, err := lockInstallment(ctx, tx, id)
			if err != nil {
				return err
			}
			discounted, err := installment.Discount(items[idx], amount, s.opts.Now())
			if err != nil {
				return err
			}
			if err := tx.Installments().Update(ctx, &discounted); err != nil {
				return err
			}
			items[idx] = discounted
			payments, err := settle(ctx, tx, f, items)
			if err != nil {
				return err
			}
			out = s.detail(*f, items, payments)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("installment discounted", "installment", id, "file", out.FileNumber, "discount", amount.StringFixed(2))
	return out, nil
}

// ApplyLateFees stores the configured late fee policy's charges on every
// open installment of the file as of now.
func (s *FileService) ApplyLateFees(ctx context.Context, fileID uint) (*FileDetail, int, error) {
	if s.opts.LateFee == nil {
		return nil, 0, fmt.Errorf("%w: no late fee policy configured", ErrInvalidState)
	}
	var (
		out     *FileDetail
		changed int
	)
	err := s.opts.retry(ctx, "file.late_fees", func() error {
		changed = 0
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, err := tx.Files().GetForUpdate(ctx, fileID)
			if err != nil {
				return err
			}
			if f.Status.Closed() {
				return fmt.Errorf("%w: %s", ErrFileClosed, f.FileNumber)
			}
			items, err := tx.Installments().ListByFile(ctx, fileID, true)
			if err != nil {
				return err
			}
			asOf := s.opts.Now()
			for i := range items {
				next, ok := installment.ApplyLateFee(items[i], s.opts.LateFee, asOf)
				if !ok {
					continue
				}
				if err := tx.Installments().Update(ctx, &next); err != nil {
					return err
				}
				items[i] = next
				changed++
			}
			payments, err := tx.Payments().ListByFile(ctx, fileID)
			if err != nil {
				return err
			}
			out = s.detail(*f, items, payments)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return out, changed, nil
}

const refreshBatch = 200

// RefreshOverdue persists recomputed overdue status for every open
// installment already past due. Rows changed concurrently are skipped and
// picked up by the next run.
func (s *FileService) RefreshOverdue(ctx context.Context) (int, error) {
	asOf := installment.DateOnly(s.opts.Now())
	var (
		updated int
		after   uint
	)
	for {
		batch, err := s.store.Installments().ListOpenDue(ctx, asOf, after, refreshBatch)
		if err != nil {
			return updated, err
		}
		for i := range batch {
			next := installment.RecomputeOverdueStatus(batch[i], asOf)
			if next.Status == batch[i].Status && next.DaysOverdue == batch[i].DaysOverdue {
				continue
			}
			if err := s.store.Installments().Update(ctx, &next); err != nil {
				if !isConflict(err) {
					return updated, err
				}
				s.opts.Logger.Debug("overdue refresh skipped", "installment", next.ID, "error", err)
				continue
			}
			updated++
		}
		if len(batch) < refreshBatch {
			return updated, nil
		}
		after = batch[len(batch)-1].ID
		if err := ctx.Err(); err != nil {
			return updated, err
		}
	}
}

func (s *FileService) detail(f models.PropertyFile, items []models.Installment, payments []models.Payment) *FileDetail {
	asOf := s.opts.Now()
	out := &FileDetail{AsOf: installment.DateOnly(asOf), OverdueAmount: decimal.Zero}

	view := make([]models.Installment, len(items))
	copy(view, items)
	installment.RecomputeAll(view, asOf)
	for _, it := range view {
		if it.Status == models.InstallmentOverdue {
			out.OverdueCount++
			out.OverdueAmount = out.OverdueAmount.Add(installment.Outstanding(it))
		}
	}
	f.Installments = view
	out.PropertyFile = f

	b, err := installment.Summarize(f, payments)
	if err != nil {
		s.opts.Logger.Error("file balance invariant", "file", f.FileNumber, "error", err)
	}
	out.DownPaymentOutstanding = installment.DownPaymentOutstanding(f, b)
	return out
}

// lockInstallment locks the installment's file and then the file's
// installments, in that order, and returns the index of the one asked for.
func lockInstallment(ctx context.Context, tx repository.Store, id uint) (*models.PropertyFile, []models.Installment, int, error) {
	inst, err := tx.Installments().Get(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	f, err := tx.Files().GetForUpdate(ctx, inst.FileID)
	if err != nil {
		return nil, nil, 0, err
	}
	if f.Status.Closed() {
		return nil, nil, 0, fmt.Errorf("%w: %s", ErrFileClosed, f.FileNumber)
	}
	items, err := tx.Installments().ListByFile(ctx, f.ID, true)
	if err != nil {
		return nil, nil, 0, err
	}
	for i := range items {
		if items[i].ID == id {
			return f, items, i, nil
		}
	}
	return nil, nil, 0, fmt.Errorf("installment %d: %w", id, repository.ErrNotFound)
}

// settle recomputes the file's balance from its payments, moves it to
// completed when nothing is owed (or back to active when a reversal reopened
// it) and writes it with a version check.
func settle(ctx context.Context, tx repository.Store, f *models.PropertyFile, items []models.Installment) ([]models.Payment, error) {
	payments, err := tx.Payments().ListByFile(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	b, err := installment.Summarize(*f, payments)
	if err != nil {
		return nil, err
	}
	installment.ApplyBalance(f, b)

	done := installment.Settled(*f, b, items)
	switch {
	case done && (f.Status == models.FileActive || f.Status == models.FileDefaulted):
		f.Status = models.FileCompleted
		if err := tx.Assets().SetStatus(ctx, f.Asset, models.InventorySold); err != nil {
			return nil, err
		}
	case !done && f.Status == models.FileCompleted:
		f.Status = models.FileActive
		if err := tx.Assets().SetStatus(ctx, f.Asset, models.InventoryBooked); err != nil {
			return nil, err
		}
	}
	if err := tx.Files().Update(ctx, f); err != nil {
		return nil, err
	}
	return payments, nil
}
