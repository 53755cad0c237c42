package services

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"realestate-crm/models"
	"realestate-crm/repository"
)

// memStore is an in-memory repository.Store. Transaction snapshots the maps
// and restores them when fn fails. conflicts makes the next file updates
// fail with a version conflict, as if another writer got there first.
type memStore struct {
	files        map[uint]models.PropertyFile
	installments map[uint]models.Installment
	payments     map[uint]models.Payment
	deals        map[uint]models.Deal
	assets       map[models.AssetRef]models.InventoryStatus
	nextID       uint
	conflicts    int
	txCount      int
}

func newMemStore() *memStore {
	return &memStore{
		files:        map[uint]models.PropertyFile{},
		installments: map[uint]models.Installment{},
		payments:     map[uint]models.Payment{},
		deals:        map[uint]models.Deal{},
		assets:       map[models.AssetRef]models.InventoryStatus{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) Files() repository.FileRepository               { return memFiles{m} }
func (m *memStore) Installments() repository.InstallmentRepository { return memInstallments{m} }
func (m *memStore) Payments() repository.PaymentRepository         { return memPayments{m} }
func (m *memStore) Deals() repository.DealRepository               { return memDeals{m} }
func (m *memStore) Assets() repository.AssetRepository             { return memAssets{m} }

func (m *memStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	m.txCount++
	files, insts, pays, deals, assets, next := maps.Clone(m.files), maps.Clone(m.installments),
		maps.Clone(m.payments), maps.Clone(m.deals), maps.Clone(m.assets), m.nextID
	if err := fn(m); err != nil {
		m.files, m.installments, m.payments, m.deals, m.assets, m.nextID = files, insts, pays, deals, assets, next
		return err
	}
	return nil
}

func (m *memStore) fileInstallments(fileID uint) []models.Installment {
	var out []models.Installment
	for _, it := range m.installments {
		if it.FileID == fileID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out
}

func (m *memStore) filePayments(fileID uint) []models.Payment {
	var out []models.Payment
	for _, p := range m.payments {
		if p.FileID == fileID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memFiles struct{ m *memStore }

func (r memFiles) Create(_ context.Context, f *models.PropertyFile) error {
	f.ID = r.m.id()
	stored := *f
	stored.Installments = nil
	r.m.files[f.ID] = stored
	return nil
}

func (r memFiles) Get(_ context.Context, id uint) (*models.PropertyFile, error) {
	f, ok := r.m.files[id]
	if !ok {
		return nil, fmt.Errorf("file %d: %w", id, repository.ErrNotFound)
	}
	return &f, nil
}

func (r memFiles) GetForUpdate(ctx context.Context, id uint) (*models.PropertyFile, error) {
	return r.Get(ctx, id)
}

func (r memFiles) List(_ context.Context, filter repository.FileFilter) ([]models.PropertyFile, int64, error) {
	var out []models.PropertyFile
	for _, f := range r.m.files {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.ClientID != 0 && f.ClientID != filter.ClientID {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r memFiles) Update(_ context.Context, f *models.PropertyFile) error {
	cur, ok := r.m.files[f.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.m.conflicts > 0 {
		r.m.conflicts--
		return fmt.Errorf("file %d: %w", f.ID, repository.ErrConcurrentModification)
	}
	if cur.Version != f.Version {
		return fmt.Errorf("file %d: %w", f.ID, repository.ErrConcurrentModification)
	}
	f.Version++
	stored := *f
	stored.Installments = nil
	r.m.files[f.ID] = stored
	return nil
}

type memInstallments struct{ m *memStore }

func (r memInstallments) CreateBatch(_ context.Context, items []models.Installment) error {
	for i := range items {
		items[i].ID = r.m.id()
		r.m.installments[items[i].ID] = items[i]
	}
	return nil
}

func (r memInstallments) Get(_ context.Context, id uint) (*models.Installment, error) {
	it, ok := r.m.installments[id]
	if !ok {
		return nil, fmt.Errorf("installment %d: %w", id, repository.ErrNotFound)
	}
	return &it, nil
}

func (r memInstallments) GetForUpdate(ctx context.Context, id uint) (*models.Installment, error) {
	return r.Get(ctx, id)
}

func (r memInstallments) ListByFile(_ context.Context, fileID uint, _ bool) ([]models.Installment, error) {
	return r.m.fileInstallments(fileID), nil
}

func (r memInstallments) ListOpenDue(_ context.Context, asOf time.Time, afterID uint, limit int) ([]models.Installment, error) {
	var out []models.Installment
	for _, it := range r.m.installments {
		if it.Status.Settled() || !it.DueDate.Before(asOf) || it.ID <= afterID {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memInstallments) Update(_ context.Context, inst *models.Installment) error {
	cur, ok := r.m.installments[inst.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Version != inst.Version {
		return fmt.Errorf("installment %d: %w", inst.ID, repository.ErrConcurrentModification)
	}
	inst.Version++
	r.m.installments[inst.ID] = *inst
	return nil
}

type memPayments struct{ m *memStore }

func (r memPayments) Create(_ context.Context, p *models.Payment) error {
	p.ID = r.m.id()
	r.m.payments[p.ID] = *p
	return nil
}

func (r memPayments) Get(_ context.Context, id uint) (*models.Payment, error) {
	p, ok := r.m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %d: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func (r memPayments) GetForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	return r.Get(ctx, id)
}

func (r memPayments) ListByFile(_ context.Context, fileID uint) ([]models.Payment, error) {
	return r.m.filePayments(fileID), nil
}

func (r memPayments) Update(_ context.Context, p *models.Payment) error {
	if _, ok := r.m.payments[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.m.payments[p.ID] = *p
	return nil
}

type memDeals struct{ m *memStore }

func (r memDeals) GetForUpdate(_ context.Context, id uint) (*models.Deal, error) {
	d, ok := r.m.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %d: %w", id, repository.ErrNotFound)
	}
	return &d, nil
}

func (r memDeals) Update(_ context.Context, d *models.Deal) error {
	if _, ok := r.m.deals[d.ID]; !ok {
		return repository.ErrNotFound
	}
	r.m.deals[d.ID] = *d
	return nil
}

type memAssets struct{ m *memStore }

func (r memAssets) LockStatus(_ context.Context, ref models.AssetRef) (models.InventoryStatus, error) {
	s, ok := r.m.assets[ref]
	if !ok {
		return "", fmt.Errorf("%s: %w", ref, repository.ErrNotFound)
	}
	return s, nil
}

func (r memAssets) SetStatus(_ context.Context, ref models.AssetRef, status models.InventoryStatus) error {
	if _, ok := r.m.assets[ref]; !ok {
		return fmt.Errorf("%s: %w", ref, repository.ErrNotFound)
	}
	r.m.assets[ref] = status
	return nil
}
