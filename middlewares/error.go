package middlewares

import (
	"errors"
	"log/slog"

	"realestate-crm/installment"
	"realestate-crm/models"
	"realestate-crm/repository"
	"realestate-crm/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	unprocessable = []error{
		installment.ErrInvalidScheduleInput,
		installment.ErrInvalidAmount,
		services.ErrInvalidPayment,
		models.ErrInvalidAsset,
	}
	notFound = []error{
		repository.ErrNotFound,
		gorm.ErrRecordNotFound,
	}
	conflict = []error{
		installment.ErrInvalidTransition,
		installment.ErrInstallmentSettled,
		repository.ErrConcurrentModification,
		services.ErrInvalidState,
		services.ErrFileClosed,
		services.ErrAssetUnavailable,
		services.ErrNothingDue,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	switch {
	case isAny(err, unprocessable):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	case isAny(err, notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "record already exists"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "record is referenced or references a missing record"})
	case isAny(err, conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	}

	slog.Error("internal error", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
