package middlewares

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"
	"realestate-crm/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planDTO struct {
	Amount    decimal.Decimal  `json:"amount" validate:"gt=0"`
	Frequency models.Frequency `json:"frequency" validate:"required,enum"`
	Asset     models.AssetRef  `json:"asset"`
}

func TestErrorHandlerMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("wrap: %w", installment.ErrInvalidScheduleInput), fiber.StatusUnprocessableEntity},
		{services.ErrInvalidPayment, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("file 3: %w", repository.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("x: %w", repository.ErrConcurrentModification), fiber.StatusConflict},
		{installment.ErrInvalidTransition, fiber.StatusConflict},
		{installment.ErrInstallmentSettled, fiber.StatusConflict},
		{services.ErrFileClosed, fiber.StatusConflict},
		{fiber.NewError(fiber.StatusTeapot, "short and stout"), fiber.StatusTeapot},
		{errors.New("pq: connection refused"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		app.Get("/", func(c *fiber.Ctx) error { return tc.err })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode, tc.err.Error())

		if tc.code == fiber.StatusInternalServerError {
			body, _ := io.ReadAll(resp.Body)
			assert.NotContains(t, string(body), "connection refused")
		}
	}
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/", func(c *fiber.Ctx) error {
		var in planDTO
		if err := BindAndValidate(c, &in); err != nil {
			return err
		}
		return c.JSON(in)
	})

	call := func(body string) (*http.Response, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		var out map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	resp, _ := call(`{"amount":"1500.50","frequency":"monthly","asset":{"kind":"plot","id":4}}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out := call(`{"amount":"0","frequency":"weekly","asset":{"kind":"car","id":0}}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	errs, ok := out["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gt", errs["amount"])
	assert.Equal(t, "enum", errs["frequency"])
	assert.Equal(t, "enum", errs["kind"])
	assert.Equal(t, "required", errs["id"])

	resp, _ = call(`{not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRequestHash(t *testing.T) {
	a := requestHash("POST", "/api/files/1/payments", []byte(`{"amount":"10"}`))
	b := requestHash("POST", "/api/files/1/payments", []byte(`{"amount":"10"}`))
	c := requestHash("POST", "/api/files/2/payments", []byte(`{"amount":"10"}`))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	app := fiber.New()
	app.Use(Idempotency())
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Idempotency-Key", strings.Repeat("k", 129))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNewValidatorRegistersEnum(t *testing.T) {
	var v interface{ Var(any, string) error }
	require.NotPanics(t, func() { v = newValidator() })
	assert.NoError(t, v.Var(models.FrequencyMonthly, "enum"))
	assert.Error(t, v.Var(models.Frequency("weekly"), "enum"))
}
