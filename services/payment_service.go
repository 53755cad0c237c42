package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PostPayment is money received against a file. Pending payments (uncleared
// cheques, unconfirmed transfers) are recorded without touching balances
// until confirmed.
type PostPayment struct {
	FileID        uint
	InstallmentID *uint
	Amount        decimal.Decimal
	Type          models.PaymentType
	Method        models.PaymentMethod
	Date          time.Time
	Pending       bool
	Reference     string
	Note          string
	Meta          datatypes.JSON
}

// Receipt is what a posting produced. Overpayment is money that was not
// applied and must be returned or credited by the caller.
type Receipt struct {
	Payments    []models.Payment    `json:"payments"`
	Overpayment decimal.Decimal     `json:"overpayment"`
	File        models.PropertyFile `json:"file"`
}

type PaymentService struct {
	store repository.Store
	opts  Options
}

func NewPaymentService(store repository.Store, opts Options) *PaymentService {
	return &PaymentService{store: store, opts: opts.withDefaults()}
}

func (in PostPayment) validate() error {
	switch {
	case !in.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	case !in.Amount.Equal(in.Amount.Round(2)):
		return fmt.Errorf("%w: amount is limited to 2 decimal places", ErrInvalidPayment)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown payment type %q", ErrInvalidPayment, in.Type)
	case !in.Method.Valid():
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, in.Method)
	case in.InstallmentID != nil && in.Type != models.PaymentInstallment:
		return fmt.Errorf("%w: %s payments are not bound to an installment", ErrInvalidPayment, in.Type)
	}
	return nil
}

// Post records a payment and, unless it is pending, applies it to the file.
func (s *PaymentService) Post(ctx context.Context, in PostPayment) (*Receipt, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.opts.Now()
	}
	in.Date = installment.DateOnly(in.Date)

	var out *Receipt
	err := s.opts.retry(ctx, "payment.post", func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, err := tx.Files().GetForUpdate(ctx, in.FileID)
			if err != nil {
				return err
			}
			if f.Status.Closed() {
				return fmt.Errorf("%w: %s", ErrFileClosed, f.FileNumber)
			}
			if in.Pending {
				out, err = s.recordPending(ctx, tx, f, in)
				return err
			}

			a, items, err := s.apply(ctx, tx, f, allocRequest{
				Type:          in.Type,
				InstallmentID: in.InstallmentID,
				Amount:        in.Amount,
				Date:          in.Date,
			})
			if err != nil {
				return err
			}
			stamp(a.rows, in.Method, in.Reference, in.Note, in.Meta)
			for i := range a.rows {
				if err := tx.Payments().Create(ctx, &a.rows[i]); err != nil {
					return err
				}
			}
			out, err = s.finish(ctx, tx, f, items, a)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("payment posted",
		"file", out.File.FileNumber, "type", in.Type, "amount", in.Amount.StringFixed(2),
		"rows", len(out.Payments), "overpayment", out.Overpayment.StringFixed(2), "pending", in.Pending)
	return out, nil
}

func (s *PaymentService) recordPending(ctx context.Context, tx repository.Store, f *models.PropertyFile, in PostPayment) (*Receipt, error) {
	if in.InstallmentID != nil {
		inst, err := tx.Installments().Get(ctx, *in.InstallmentID)
		if err != nil {
			return nil, err
		}
		if inst.FileID != f.ID {
			return nil, fmt.Errorf("installment %d of file %d: %w", inst.ID, f.ID, repository.ErrNotFound)
		}
	}
	p := models.Payment{
		ReceiptNumber:   NewReceiptNumber(),
		FileID:          f.ID,
		InstallmentID:   in.InstallmentID,
		Amount:          in.Amount,
		PrincipalAmount: decimal.Zero,
		FeeAmount:       decimal.Zero,
		PaymentType:     in.Type,
		PaymentMethod:   in.Method,
		PaymentDate:     in.Date,
		Status:          models.PaymentPending,
		Reference:       in.Reference,
		Note:            in.Note,
		Meta:            in.Meta,
	}
	if err := tx.Payments().Create(ctx, &p); err != nil {
		return nil, err
	}
	return &Receipt{Payments: []models.Payment{p}, Overpayment: decimal.Zero, File: *f}, nil
}

// Confirm applies a pending payment. The pending row becomes the first
// allocated row; any carried remainder gets rows of its own.
func (s *PaymentService) Confirm(ctx context.Context, id uint) (*Receipt, error) {
	var out *Receipt
	err := s.opts.retry(ctx, "payment.confirm", func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, p, err := lockPayment(ctx, tx, id)
			if err != nil {
				return err
			}
			if p.Status != models.PaymentPending {
				return fmt.Errorf("%w: payment %s is %s", ErrInvalidState, p.ReceiptNumber, p.Status)
			}
			if f.Status.Closed() {
				return fmt.Errorf("%w: %s", ErrFileClosed, f.FileNumber)
			}

			a, items, err := s.apply(ctx, tx, f, allocRequest{
				Type:          p.PaymentType,
				InstallmentID: p.InstallmentID,
				Amount:        p.Amount,
				Date:          p.PaymentDate,
			})
			if err != nil {
				return err
			}

			first := a.rows[0]
			p.InstallmentID = first.InstallmentID
			p.Amount = first.Amount
			p.PrincipalAmount = first.PrincipalAmount
			p.FeeAmount = first.FeeAmount
			p.Status = models.PaymentCompleted
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
			a.rows[0] = *p

			ref := p.Reference
			if ref == "" {
				ref = p.ReceiptNumber
			}
			rest := a.rows[1:]
			stamp(rest, p.PaymentMethod, ref, p.Note, p.Meta)
			for i := range rest {
				if err := tx.Payments().Create(ctx, &rest[i]); err != nil {
					return err
				}
			}
			out, err = s.finish(ctx, tx, f, items, a)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("payment confirmed", "payment", id, "file", out.File.FileNumber, "rows", len(out.Payments))
	return out, nil
}

// Bounce marks a pending payment as bounced. Completed payments are undone
// with Reverse instead.
func (s *PaymentService) Bounce(ctx context.Context, id uint, reason string) (*models.Payment, error) {
	var out *models.Payment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Payments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status != models.PaymentPending {
			return fmt.Errorf("%w: payment %s is %s, only pending payments bounce", ErrInvalidState, p.ReceiptNumber, p.Status)
		}
		p.Status = models.PaymentBounced
		p.Note = appendNote(p.Note, reason)
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("payment bounced", "payment", out.ReceiptNumber)
	return out, nil
}

// Reverse undoes a completed payment. Money applied to an installment that
// has since been paid in full cannot be reversed.
func (s *PaymentService) Reverse(ctx context.Context, id uint, reason string) (*Receipt, error) {
	var out *Receipt
	err := s.opts.retry(ctx, "payment.reverse", func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			f, p, err := lockPayment(ctx, tx, id)
			if err != nil {
				return err
			}
			if p.Status != models.PaymentCompleted {
				return fmt.Errorf("%w: payment %s is %s, only completed payments reverse", ErrInvalidState, p.ReceiptNumber, p.Status)
			}
			if f.Status == models.FileCancelled {
				return fmt.Errorf("%w: %s", ErrFileClosed, f.FileNumber)
			}

			items, err := tx.Installments().ListByFile(ctx, f.ID, true)
			if err != nil {
				return err
			}
			if p.InstallmentID != nil {
				idx := -1
				for i := range items {
					if items[i].ID == *p.InstallmentID {
						idx = i
					}
				}
				if idx < 0 {
					return fmt.Errorf("installment %d: %w", *p.InstallmentID, repository.ErrNotFound)
				}
				inst, err := installment.Unapply(items[idx], *p)
				if err != nil {
					return fmt.Errorf("reverse %s: %w", p.ReceiptNumber, err)
				}
				if err := tx.Installments().Update(ctx, &inst); err != nil {
					return err
				}
				items[idx] = inst
			}

			p.Status = models.PaymentReversed
			p.Note = appendNote(p.Note, reason)
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
			if _, err := settle(ctx, tx, f, items); err != nil {
				return err
			}
			out = &Receipt{Payments: []models.Payment{*p}, Overpayment: decimal.Zero, File: *f}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("payment reversed", "payment", out.Payments[0].ReceiptNumber, "file", out.File.FileNumber)
	return out, nil
}

// apply allocates req against the locked file and writes the installments
// it changed. Payment rows are left to the caller.
func (s *PaymentService) apply(ctx context.Context, tx repository.Store, f *models.PropertyFile, req allocRequest) (allocation, []models.Installment, error) {
	items, err := tx.Installments().ListByFile(ctx, f.ID, true)
	if err != nil {
		return allocation{}, nil, err
	}
	payments, err := tx.Payments().ListByFile(ctx, f.ID)
	if err != nil {
		return allocation{}, nil, err
	}
	b, err := installment.Summarize(*f, payments)
	if err != nil {
		return allocation{}, nil, err
	}
	a, err := allocate(*f, items, b, req, s.opts.Overpayment)
	if err != nil {
		return a, nil, err
	}
	for _, i := range a.touched {
		if err := tx.Installments().Update(ctx, &items[i]); err != nil {
			return a, nil, err
		}
	}
	return a, items, nil
}

func (s *PaymentService) finish(ctx context.Context, tx repository.Store, f *models.PropertyFile, items []models.Installment, a allocation) (*Receipt, error) {
	if _, err := settle(ctx, tx, f, items); err != nil {
		return nil, err
	}
	return &Receipt{Payments: a.rows, Overpayment: a.overpayment, File: *f}, nil
}

// lockPayment locks the payment's file before the payment itself.
func lockPayment(ctx context.Context, tx repository.Store, id uint) (*models.PropertyFile, *models.Payment, error) {
	p, err := tx.Payments().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := tx.Files().GetForUpdate(ctx, p.FileID)
	if err != nil {
		return nil, nil, err
	}
	if p, err = tx.Payments().GetForUpdate(ctx, id); err != nil {
		return nil, nil, err
	}
	return f, p, nil
}

// stamp fills the fields every row of one receipt shares. Rows split from
// one amount share a reference so they can be traced back together.
func stamp(rows []models.Payment, method models.PaymentMethod, reference, note string, meta datatypes.JSON) {
	for i := range rows {
		rows[i].ReceiptNumber = NewReceiptNumber()
		rows[i].PaymentMethod = method
		rows[i].Note = note
		rows[i].Meta = meta
	}
	if reference == "" && len(rows) > 1 {
		reference = rows[0].ReceiptNumber
	}
	for i := range rows {
		rows[i].Reference = reference
	}
}

func appendNote(note, reason string) string {
	reason = strings.TrimSpace(reason)
	switch {
	case reason == "":
		return note
	case note == "":
		return reason
	}
	return note + "\n" + reason
}
