package middlewares

import (
	"log/slog"

	"realestate-crm/database"

	"github.com/gofiber/fiber/v2"
)

// RequestTx opens a per-request DB transaction for plain CRUD handlers.
// Run it AFTER Idempotency() so idempotency records are not tied to the
// handler transaction. Handlers read it through database.GetDB(c).
func RequestTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		if database.DB == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database not initialized")
		}
		tx := database.DB.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so the recover middleware can catch
			}
			// handler errors and 4xx/5xx responses written without an error both roll back
			if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				slog.Error("tx commit failed", "path", c.Path(), "error", e)
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		c.Locals("tx", tx)
		err = c.Next()
		return err
	}
}
