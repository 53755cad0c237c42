package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"realestate-crm/controllers"
	"realestate-crm/middlewares"
	"realestate-crm/reports"
	"realestate-crm/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReports struct{}

func (stubReports) Overdue(ctx context.Context, asOf time.Time) (*reports.OverdueReport, error) {
	return &reports.OverdueReport{AsOf: asOf}, nil
}

func (stubReports) Payments(ctx context.Context, p repository.Period) (*reports.PaymentReport, error) {
	return &reports.PaymentReport{}, nil
}

func (stubReports) Summary(ctx context.Context) (*reports.Summary, error) {
	return &reports.Summary{}, nil
}

func (stubReports) DealerCommissions(ctx context.Context, p repository.Period) (*reports.CommissionReport, error) {
	return &reports.CommissionReport{}, nil
}

func (stubReports) Expenses(ctx context.Context, p repository.Period) (*reports.ExpenseReport, error) {
	return &reports.ExpenseReport{}, nil
}

func TestRegisterMountsRoutes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	Register(app, Deps{
		Files:   &controllers.FileController{},
		Reports: &controllers.ReportController{Reports: stubReports{}},
	})

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/reports/summary", fiber.StatusOK},
		{http.MethodGet, "/api/reports/overdue?as_of=2025-03-05", fiber.StatusOK},
		{http.MethodGet, "/api/reports/dealers", fiber.StatusOK},
		// path ids are checked before any service call
		{http.MethodPost, "/api/files/x/payments", fiber.StatusBadRequest},
		{http.MethodPut, "/api/payments/x/confirm", fiber.StatusBadRequest},
		{http.MethodPost, "/api/deals/x/convert", fiber.StatusBadRequest},
		// CRUD groups need the request transaction
		{http.MethodGet, "/api/societies", fiber.StatusServiceUnavailable},
		{http.MethodPost, "/api/leads/1/convert", fiber.StatusServiceUnavailable},
		{http.MethodGet, "/api/dealers/1/commissions", fiber.StatusServiceUnavailable},
		{http.MethodGet, "/api/unknown", fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
