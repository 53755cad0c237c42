package repository

import (
	"context"
	"errors"
	"time"

	"realestate-crm/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConcurrentModification means a versioned row changed after it was read.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// FileFilter narrows ListFiles. Zero fields are ignored.
type FileFilter struct {
	Status   models.FileStatus
	ClientID uint
	DealerID uint
	Asset    *models.AssetRef
	Limit    int
	Offset   int
}

// Store groups the repositories used by the file and payment services.
// Transaction runs fn against a Store bound to one database transaction;
// fn's error rolls everything back.
//
//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=repository.go
type Store interface {
	Files() FileRepository
	Installments() InstallmentRepository
	Payments() PaymentRepository
	Deals() DealRepository
	Assets() AssetRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}

type FileRepository interface {
	Create(ctx context.Context, f *models.PropertyFile) error
	Get(ctx context.Context, id uint) (*models.PropertyFile, error)
	GetForUpdate(ctx context.Context, id uint) (*models.PropertyFile, error)
	List(ctx context.Context, filter FileFilter) ([]models.PropertyFile, int64, error)
	// Update writes the mutable columns when f.Version still matches and
	// bumps the version.
	Update(ctx context.Context, f *models.PropertyFile) error
}

type InstallmentRepository interface {
	CreateBatch(ctx context.Context, items []models.Installment) error
	Get(ctx context.Context, id uint) (*models.Installment, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Installment, error)
	// ListByFile returns the file's installments ordered by number.
	ListByFile(ctx context.Context, fileID uint, forUpdate bool) ([]models.Installment, error)
	// ListOpenDue pages through pending or overdue installments due before
	// asOf, ordered by id and starting after afterID.
	ListOpenDue(ctx context.Context, asOf time.Time, afterID uint, limit int) ([]models.Installment, error)
	Update(ctx context.Context, inst *models.Installment) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, id uint) (*models.Payment, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Payment, error)
	ListByFile(ctx context.Context, fileID uint) ([]models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
}

type DealRepository interface {
	GetForUpdate(ctx context.Context, id uint) (*models.Deal, error)
	Update(ctx context.Context, d *models.Deal) error
}

// AssetRepository reads and changes the inventory status of plots and properties.
type AssetRepository interface {
	LockStatus(ctx context.Context, ref models.AssetRef) (models.InventoryStatus, error)
	SetStatus(ctx context.Context, ref models.AssetRef, status models.InventoryStatus) error
}
