package controllers

import (
	"fmt"
	"time"

	"realestate-crm/database"
	"realestate-crm/models"
	"realestate-crm/repository"
	"realestate-crm/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dealDTO struct {
	ClientID uint            `json:"client_id" validate:"required"`
	DealerID *uint           `json:"dealer_id"`
	Asset    models.AssetRef `json:"asset"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	DealDate string          `json:"deal_date" validate:"omitempty,datetime=2006-01-02"`
	Notes    string          `json:"notes"`
}

type dealPatch struct {
	DealerID *uint            `json:"dealer_id"`
	Amount   *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	DealDate *string          `json:"deal_date" validate:"omitempty,datetime=2006-01-02"`
	Notes    *string          `json:"notes"`
}

type dealStatusDTO struct {
	Status models.DealStatus `json:"status" validate:"required,enum"`
}

// dealerRate returns the commission rate of an active dealer.
func dealerRate(db *gorm.DB, id uint) (decimal.Decimal, error) {
	var dealer models.Dealer
	if err := db.First(&dealer, id).Error; err != nil {
		return decimal.Zero, err
	}
	if dealer.Status != models.StatusActive {
		return decimal.Zero, fmt.Errorf("%w: dealer %d is %s", services.ErrInvalidState, dealer.ID, dealer.Status)
	}
	return dealer.CommissionRate, nil
}

// CreateDeal records a pending deal on an available asset and snapshots the
// dealer's commission.
func CreateDeal(c *fiber.Ctx) error {
	var dto dealDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	day, err := bodyDate(dto.DealDate, time.Now().UTC())
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	status, err := repository.NewGormStore(db).Assets().LockStatus(c.UserContext(), dto.Asset)
	if err != nil {
		return err
	}
	if status != models.InventoryAvailable {
		return fmt.Errorf("%w: %s is %s", services.ErrAssetUnavailable, dto.Asset, status)
	}

	deal := models.Deal{
		Reference: services.NewDealReference(),
		ClientID:  dto.ClientID,
		DealerID:  dto.DealerID,
		Asset:     dto.Asset,
		Amount:    dto.Amount,
		Status:    models.DealPending,
		DealDate:  day,
		Notes:     dto.Notes,
	}
	rate := decimal.Zero
	if dto.DealerID != nil {
		if rate, err = dealerRate(db, *dto.DealerID); err != nil {
			return err
		}
	}
	deal.ApplyCommission(rate)
	return create(c, &deal)
}

func GetDeals(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if s := models.DealStatus(c.Query("status")); s != "" {
		if !s.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		db = db.Where("status = ?", s)
	}
	for _, key := range []string{"client_id", "dealer_id"} {
		id, err := optionalID(c, key)
		if err != nil {
			return err
		}
		if id != nil {
			db = db.Where(key+" = ?", *id)
		}
	}
	return list[models.Deal](c, db, "deal_date DESC, id DESC")
}

func GetDeal(c *fiber.Ctx) error { return show[models.Deal](c, "Client", "Dealer") }

func lockDeal(db *gorm.DB, id uint) (*models.Deal, error) {
	var deal models.Deal
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&deal, id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateDeal edits open deals and recomputes the commission.
func UpdateDeal(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto dealPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	deal, err := lockDeal(db, id)
	if err != nil {
		return err
	}
	if deal.Status != models.DealPending && deal.Status != models.DealConfirmed {
		return fmt.Errorf("%w: deal %s is %s", services.ErrInvalidState, deal.Reference, deal.Status)
	}

	rate := deal.CommissionRate
	if dto.DealerID != nil {
		if rate, err = dealerRate(db, *dto.DealerID); err != nil {
			return err
		}
		deal.DealerID = dto.DealerID
	}
	if dto.Amount != nil {
		deal.Amount = *dto.Amount
	}
	if dto.DealDate != nil {
		if deal.DealDate, err = bodyDate(*dto.DealDate, deal.DealDate); err != nil {
			return err
		}
	}
	if dto.Notes != nil {
		deal.Notes = *dto.Notes
	}
	deal.ApplyCommission(rate)

	if err := db.Model(deal).
		Select("dealer_id", "amount", "commission_rate", "commission_amount", "deal_date", "notes").
		Updates(deal).Error; err != nil {
		return err
	}
	return c.JSON(deal)
}

// UpdateDealStatus applies a manual status change. Conversion goes through
// the convert endpoint.
func UpdateDealStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto dealStatusDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	deal, err := lockDeal(db, id)
	if err != nil {
		return err
	}
	if !deal.Status.CanBecome(dto.Status) {
		return fmt.Errorf("%w: deal %s cannot go from %s to %s", services.ErrInvalidState, deal.Reference, deal.Status, dto.Status)
	}
	if err := db.Model(deal).Update("status", dto.Status).Error; err != nil {
		return err
	}
	deal.Status = dto.Status
	return c.JSON(deal)
}

// DeleteDeal removes deals that never turned into a file.
func DeleteDeal(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	deal, err := lockDeal(db, id)
	if err != nil {
		return err
	}
	if deal.Status != models.DealPending && deal.Status != models.DealCancelled {
		return fmt.Errorf("%w: deal %s is %s", services.ErrInvalidState, deal.Reference, deal.Status)
	}
	if err := db.Delete(deal).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
