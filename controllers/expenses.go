package controllers

import (
	"time"

	"realestate-crm/database"
	"realestate-crm/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type expenseDTO struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Category    string           `json:"category" validate:"required,max=50"`
	Amount      decimal.Decimal  `json:"amount" validate:"gt=0"`
	ExpenseDate string           `json:"expense_date" validate:"omitempty,datetime=2006-01-02"`
	SocietyID   *uint            `json:"society_id"`
	Asset       *models.AssetRef `json:"asset"`
	PaidTo      string           `json:"paid_to" validate:"max=150"`
	Notes       string           `json:"notes"`
}

type expensePatch struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category" validate:"omitempty,min=1,max=50"`
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	ExpenseDate *string          `json:"expense_date" validate:"omitempty,datetime=2006-01-02"`
	SocietyID   *uint            `json:"society_id"`
	Asset       *models.AssetRef `json:"asset"`
	PaidTo      *string          `json:"paid_to" validate:"omitempty,max=150"`
	Notes       *string          `json:"notes"`
}

func CreateExpense(c *fiber.Ctx) error {
	var dto expenseDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	day, err := bodyDate(dto.ExpenseDate, time.Now().UTC())
	if err != nil {
		return err
	}
	return create(c, &models.Expense{
		Title:       dto.Title,
		Category:    dto.Category,
		Amount:      dto.Amount,
		ExpenseDate: day,
		SocietyID:   dto.SocietyID,
		Asset:       dto.Asset,
		PaidTo:      dto.PaidTo,
		Notes:       dto.Notes,
	})
}

func GetExpenses(c *fiber.Ctx) error {
	p, err := queryPeriod(c)
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if cat := c.Query("category"); cat != "" {
		db = db.Where("category = ?", cat)
	}
	if !p.From.IsZero() {
		db = db.Where("expense_date >= ?", p.From)
	}
	if !p.To.IsZero() {
		db = db.Where("expense_date <= ?", p.To)
	}
	return list[models.Expense](c, db, "expense_date DESC, id DESC")
}

func GetExpense(c *fiber.Ctx) error { return show[models.Expense](c) }

func UpdateExpense(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto expensePatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Expense](c, id, &dto)
}

func DeleteExpense(c *fiber.Ctx) error { return destroy[models.Expense](c) }
