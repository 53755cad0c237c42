package controllers

import (
	"time"

	"realestate-crm/middlewares"
	"realestate-crm/models"
	"realestate-crm/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var zeroTime time.Time

// Money in payment and plan bodies is validated, never rounded: amounts with
// more than two decimals are rejected downstream.
type paymentDTO struct {
	InstallmentID *uint                `json:"installment_id"`
	Amount        decimal.Decimal      `json:"amount" validate:"gt=0"`
	Type          models.PaymentType   `json:"payment_type" validate:"required,enum"`
	Method        models.PaymentMethod `json:"payment_method" validate:"required,enum"`
	Date          string               `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Pending       bool                 `json:"pending"`
	Reference     string               `json:"reference" validate:"max=100"`
	Note          string               `json:"note" validate:"max=500"`
	Meta          datatypes.JSON       `json:"meta"`
}

type reasonDTO struct {
	Reason string `json:"reason" validate:"max=500"`
}

// PostPayment applies money to a file. An amount the file cannot absorb comes
// back as overpayment.
func (fc *FileController) PostPayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto paymentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	day, err := bodyDate(dto.Date, zeroTime)
	if err != nil {
		return err
	}
	receipt, err := fc.Payments.Post(c.UserContext(), services.PostPayment{
		FileID:        id,
		InstallmentID: dto.InstallmentID,
		Amount:        dto.Amount,
		Type:          dto.Type,
		Method:        dto.Method,
		Date:          day,
		Pending:       dto.Pending,
		Reference:     dto.Reference,
		Note:          dto.Note,
		Meta:          dto.Meta,
	})
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

func (fc *FileController) ConfirmPayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	receipt, err := fc.Payments.Confirm(c.UserContext(), id)
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.JSON(receipt)
}

func (fc *FileController) BouncePayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto reasonDTO
	if err := optionalBody(c, &dto); err != nil {
		return err
	}
	p, err := fc.Payments.Bounce(c.UserContext(), id, dto.Reason)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (fc *FileController) ReversePayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto reasonDTO
	if err := optionalBody(c, &dto); err != nil {
		return err
	}
	receipt, err := fc.Payments.Reverse(c.UserContext(), id, dto.Reason)
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.JSON(receipt)
}
