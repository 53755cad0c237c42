package controllers

import (
	"realestate-crm/database"
	"realestate-crm/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type dealerDTO struct {
	Name           string              `json:"name" validate:"required,max=150"`
	Agency         string              `json:"agency" validate:"max=150"`
	Phone          string              `json:"phone" validate:"required,max=30"`
	Email          string              `json:"email" validate:"omitempty,email,max=150"`
	CommissionRate decimal.Decimal     `json:"commission_rate" validate:"gte=0,lte=100"`
	Status         models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

type dealerPatch struct {
	Name           *string              `json:"name" validate:"omitempty,min=1,max=150"`
	Agency         *string              `json:"agency" validate:"omitempty,max=150"`
	Phone          *string              `json:"phone" validate:"omitempty,min=1,max=30"`
	Email          *string              `json:"email" validate:"omitempty,email,max=150"`
	CommissionRate *decimal.Decimal     `json:"commission_rate" validate:"omitempty,gte=0,lte=100"`
	Status         *models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

func CreateDealer(c *fiber.Ctx) error {
	var dto dealerDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Dealer{
		Name:           dto.Name,
		Agency:         dto.Agency,
		Phone:          dto.Phone,
		Email:          dto.Email,
		CommissionRate: dto.CommissionRate,
		Status:         statusOr(dto.Status),
	})
}

func GetDealers(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if s := c.Query("status"); s != "" {
		db = db.Where("status = ?", s)
	}
	return list[models.Dealer](c, db, "name")
}

func GetDealer(c *fiber.Ctx) error { return show[models.Dealer](c) }

// UpdateDealer changes the dealer; existing deals keep the rate they were
// agreed at.
func UpdateDealer(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto dealerPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Dealer](c, id, &dto)
}

func DeleteDealer(c *fiber.Ctx) error { return destroy[models.Dealer](c) }

// GetDealerCommissions lists the dealer's confirmed and converted deals in
// the optional from/to range with commission totals.
func GetDealerCommissions(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	p, err := queryPeriod(c)
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	var dealer models.Dealer
	if err := db.First(&dealer, id).Error; err != nil {
		return err
	}
	q := db.Where("dealer_id = ? AND status IN ?", id, []models.DealStatus{models.DealConfirmed, models.DealConverted})
	if !p.From.IsZero() {
		q = q.Where("deal_date >= ?", p.From)
	}
	if !p.To.IsZero() {
		q = q.Where("deal_date <= ?", p.To)
	}
	deals := make([]models.Deal, 0)
	if err := q.Order("deal_date, id").Find(&deals).Error; err != nil {
		return err
	}

	amount, commission := decimal.Zero, decimal.Zero
	for _, d := range deals {
		amount = amount.Add(d.Amount)
		commission = commission.Add(d.CommissionAmount)
	}
	return c.JSON(fiber.Map{
		"dealer":           dealer,
		"deals":            deals,
		"total_amount":     amount,
		"total_commission": commission,
	})
}
