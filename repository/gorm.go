package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realestate-crm/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Files() FileRepository               { return fileRepo{s.db} }
func (s *GormStore) Installments() InstallmentRepository { return installmentRepo{s.db} }
func (s *GormStore) Payments() PaymentRepository         { return paymentRepo{s.db} }
func (s *GormStore) Deals() DealRepository               { return dealRepo{s.db} }
func (s *GormStore) Assets() AssetRepository             { return assetRepo{s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}

type fileRepo struct{ db *gorm.DB }

func (r fileRepo) Create(ctx context.Context, f *models.PropertyFile) error {
	if err := r.db.WithContext(ctx).Omit("Installments", "Client").Create(f).Error; err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (r fileRepo) Get(ctx context.Context, id uint) (*models.PropertyFile, error) {
	var f models.PropertyFile
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, notFound(err, "file", id)
	}
	return &f, nil
}

func (r fileRepo) GetForUpdate(ctx context.Context, id uint) (*models.PropertyFile, error) {
	var f models.PropertyFile
	if err := forUpdate(r.db.WithContext(ctx)).First(&f, id).Error; err != nil {
		return nil, notFound(err, "file", id)
	}
	return &f, nil
}

func (r fileRepo) List(ctx context.Context, filter FileFilter) ([]models.PropertyFile, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PropertyFile{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.DealerID != 0 {
		q = q.Where("dealer_id = ?", filter.DealerID)
	}
	if filter.Asset != nil {
		q = q.Where("asset_kind = ? AND asset_id = ?", filter.Asset.Kind, filter.Asset.ID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var files []models.PropertyFile
	if err := q.Order("id DESC").Find(&files).Error; err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	return files, total, nil
}

func (r fileRepo) Update(ctx context.Context, f *models.PropertyFile) error {
	res := r.db.WithContext(ctx).Model(&models.PropertyFile{}).
		Where("id = ? AND version = ?", f.ID, f.Version).
		Updates(map[string]any{
			"paid_amount":      f.PaidAmount,
			"remaining_amount": f.RemainingAmount,
			"fees_paid":        f.FeesPaid,
			"status":           f.Status,
			"version":          gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update file %d: %w", f.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("file %d version %d: %w", f.ID, f.Version, ErrConcurrentModification)
	}
	f.Version++
	return nil
}

type installmentRepo struct{ db *gorm.DB }

func (r installmentRepo) CreateBatch(ctx context.Context, items []models.Installment) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(items, 100).Error; err != nil {
		return fmt.Errorf("create installments: %w", err)
	}
	return nil
}

func (r installmentRepo) Get(ctx context.Context, id uint) (*models.Installment, error) {
	var inst models.Installment
	if err := r.db.WithContext(ctx).First(&inst, id).Error; err != nil {
		return nil, notFound(err, "installment", id)
	}
	return &inst, nil
}

func (r installmentRepo) GetForUpdate(ctx context.Context, id uint) (*models.Installment, error) {
	var inst models.Installment
	if err := forUpdate(r.db.WithContext(ctx)).First(&inst, id).Error; err != nil {
		return nil, notFound(err, "installment", id)
	}
	return &inst, nil
}

func (r installmentRepo) ListByFile(ctx context.Context, fileID uint, lock bool) ([]models.Installment, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = forUpdate(q)
	}
	var items []models.Installment
	if err := q.Where("file_id = ?", fileID).Order("installment_number").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list installments of file %d: %w", fileID, err)
	}
	return items, nil
}

func (r installmentRepo) ListOpenDue(ctx context.Context, asOf time.Time, afterID uint, limit int) ([]models.Installment, error) {
	var items []models.Installment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ? AND id > ?",
			[]models.InstallmentStatus{models.InstallmentPending, models.InstallmentOverdue}, asOf, afterID).
		Order("id").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list open installments: %w", err)
	}
	return items, nil
}

func (r installmentRepo) Update(ctx context.Context, inst *models.Installment) error {
	res := r.db.WithContext(ctx).Model(&models.Installment{}).
		Where("id = ? AND version = ?", inst.ID, inst.Version).
		Updates(map[string]any{
			"paid_date":       inst.PaidDate,
			"paid_amount":     inst.PaidAmount,
			"late_fee":        inst.LateFee,
			"discount_amount": inst.DiscountAmount,
			"status":          inst.Status,
			"days_overdue":    inst.DaysOverdue,
			"version":         gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update installment %d: %w", inst.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("installment %d version %d: %w", inst.ID, inst.Version, ErrConcurrentModification)
	}
	inst.Version++
	return nil
}

type paymentRepo struct{ db *gorm.DB }

func (r paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r paymentRepo) Get(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &p, nil
}

func (r paymentRepo) GetForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := forUpdate(r.db.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &p, nil
}

func (r paymentRepo) ListByFile(ctx context.Context, fileID uint) ([]models.Payment, error) {
	var out []models.Payment
	if err := r.db.WithContext(ctx).Where("file_id = ?", fileID).Order("payment_date, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payments of file %d: %w", fileID, err)
	}
	return out, nil
}

func (r paymentRepo) Update(ctx context.Context, p *models.Payment) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("installment_id", "amount", "principal_amount", "fee_amount", "status", "note").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("update payment %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

type dealRepo struct{ db *gorm.DB }

func (r dealRepo) GetForUpdate(ctx context.Context, id uint) (*models.Deal, error) {
	var d models.Deal
	if err := forUpdate(r.db.WithContext(ctx)).First(&d, id).Error; err != nil {
		return nil, notFound(err, "deal", id)
	}
	return &d, nil
}

func (r dealRepo) Update(ctx context.Context, d *models.Deal) error {
	res := r.db.WithContext(ctx).Model(d).Select("status", "file_id").Updates(d)
	if res.Error != nil {
		return fmt.Errorf("update deal %d: %w", d.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deal %d: %w", d.ID, ErrNotFound)
	}
	return nil
}

type assetRepo struct{ db *gorm.DB }

func assetTable(kind models.AssetKind) (string, error) {
	switch kind {
	case models.AssetPlot:
		return "plots", nil
	case models.AssetProperty:
		return "properties", nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", models.ErrInvalidAsset, kind)
}

func (r assetRepo) LockStatus(ctx context.Context, ref models.AssetRef) (models.InventoryStatus, error) {
	table, err := assetTable(ref.Kind)
	if err != nil {
		return "", err
	}
	var row struct{ Status models.InventoryStatus }
	err = forUpdate(r.db.WithContext(ctx)).Table(table).Select("status").Where("id = ?", ref.ID).Take(&row).Error
	if err != nil {
		return "", notFound(err, string(ref.Kind), ref.ID)
	}
	return row.Status, nil
}

func (r assetRepo) SetStatus(ctx context.Context, ref models.AssetRef, status models.InventoryStatus) error {
	table, err := assetTable(ref.Kind)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Table(table).Where("id = ?", ref.ID).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("set %s status: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return nil
}
