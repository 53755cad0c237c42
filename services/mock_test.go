package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"realestate-crm/models"
	"realestate-crm/repository"
	"realestate-crm/repository/mocks"
	"realestate-crm/services"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions(limit int) services.Options {
	return services.Options{
		RetryLimit: limit,
		Now:        func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestPaymentService_GivesUpAfterRetryLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	conflict := errors.Join(errors.New("file 1 version 3"), repository.ErrConcurrentModification)
	store.EXPECT().Transaction(gomock.Any(), gomock.Any()).Return(conflict).Times(4)

	ps := services.NewPaymentService(store, quietOptions(4))
	_, err := ps.Post(context.Background(), services.PostPayment{
		FileID: 1, Amount: decimal.NewFromInt(100), Type: models.PaymentInstallment, Method: models.MethodCash,
	})
	assert.ErrorIs(t, err, repository.ErrConcurrentModification)
}

func TestPaymentService_DoesNotRetryOtherErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Transaction(gomock.Any(), gomock.Any()).Return(repository.ErrNotFound).Times(1)

	ps := services.NewPaymentService(store, quietOptions(4))
	_, err := ps.Confirm(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFileService_ConvertDealRequiresConfirmedDeal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	deals := mocks.NewMockDealRepository(ctrl)
	store.EXPECT().Transaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(repository.Store) error) error { return fn(store) })
	store.EXPECT().Deals().Return(deals)
	deals.EXPECT().GetForUpdate(gomock.Any(), uint(3)).Return(&models.Deal{ID: 3, Status: models.DealCancelled}, nil)

	fs := services.NewFileService(store, quietOptions(1))
	_, err := fs.ConvertDeal(context.Background(), 3, services.Plan{
		DownPayment: decimal.Zero, Installments: 2, Frequency: models.FrequencyMonthly, StartDate: time.Now(),
	})
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestFileService_CreateFileStopsWhenInstallmentsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	files := mocks.NewMockFileRepository(ctrl)
	installments := mocks.NewMockInstallmentRepository(ctrl)
	assets := mocks.NewMockAssetRepository(ctrl)
	ref := models.PlotRef(11)
	boom := errors.New("disk full")

	store.EXPECT().Transaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(repository.Store) error) error { return fn(store) })
	store.EXPECT().Assets().Return(assets).AnyTimes()
	store.EXPECT().Files().Return(files).AnyTimes()
	store.EXPECT().Installments().Return(installments).AnyTimes()

	assets.EXPECT().LockStatus(gomock.Any(), ref).Return(models.InventoryAvailable, nil)
	files.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f *models.PropertyFile) error { f.ID = 42; return nil })
	installments.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, items []models.Installment) error {
			require.Len(t, items, 3)
			for _, it := range items {
				assert.Equal(t, uint(42), it.FileID)
			}
			return boom
		})
	// no SetStatus expectation: the asset must not be booked

	fs := services.NewFileService(store, quietOptions(1))
	_, err := fs.CreateFile(context.Background(), services.NewFile{
		ClientID:     1,
		Asset:        ref,
		TotalAmount:  decimal.NewFromInt(900),
		Installments: 3,
		Frequency:    models.FrequencyMonthly,
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, boom)
}
