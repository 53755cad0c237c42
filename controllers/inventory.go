package controllers

import (
	"fmt"

	"realestate-crm/database"
	"realestate-crm/models"
	"realestate-crm/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type societyDTO struct {
	Name    string              `json:"name" validate:"required,max=150"`
	City    string              `json:"city" validate:"max=100"`
	Address string              `json:"address"`
	Status  models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

type societyPatch struct {
	Name    *string              `json:"name" validate:"omitempty,min=1,max=150"`
	City    *string              `json:"city" validate:"omitempty,max=100"`
	Address *string              `json:"address"`
	Status  *models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

func CreateSociety(c *fiber.Ctx) error {
	var dto societyDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Society{Name: dto.Name, City: dto.City, Address: dto.Address, Status: statusOr(dto.Status)})
}

func GetSocieties(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if s := c.Query("status"); s != "" {
		db = db.Where("status = ?", s)
	}
	return list[models.Society](c, db, "name")
}

func GetSociety(c *fiber.Ctx) error { return show[models.Society](c, "Blocks") }

func UpdateSociety(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto societyPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Society](c, id, &dto)
}

func DeleteSociety(c *fiber.Ctx) error { return destroy[models.Society](c) }

type blockDTO struct {
	SocietyID uint                `json:"society_id" validate:"required"`
	Name      string              `json:"name" validate:"required,max=100"`
	Status    models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

type namePatch struct {
	Name   *string              `json:"name" validate:"omitempty,min=1,max=100"`
	Status *models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

func CreateBlock(c *fiber.Ctx) error {
	var dto blockDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Block{SocietyID: dto.SocietyID, Name: dto.Name, Status: statusOr(dto.Status)})
}

func GetBlocks(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	society, err := optionalID(c, "society_id")
	if err != nil {
		return err
	}
	if society != nil {
		db = db.Where("society_id = ?", *society)
	}
	return list[models.Block](c, db, "society_id, name")
}

func GetBlock(c *fiber.Ctx) error { return show[models.Block](c, "Streets") }

func UpdateBlock(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto namePatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Block](c, id, &dto)
}

func DeleteBlock(c *fiber.Ctx) error { return destroy[models.Block](c) }

type streetDTO struct {
	BlockID uint                `json:"block_id" validate:"required"`
	Name    string              `json:"name" validate:"required,max=100"`
	Status  models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

func CreateStreet(c *fiber.Ctx) error {
	var dto streetDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Street{BlockID: dto.BlockID, Name: dto.Name, Status: statusOr(dto.Status)})
}

func GetStreets(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	block, err := optionalID(c, "block_id")
	if err != nil {
		return err
	}
	if block != nil {
		db = db.Where("block_id = ?", *block)
	}
	return list[models.Street](c, db, "block_id, name")
}

func GetStreet(c *fiber.Ctx) error { return show[models.Street](c, "Plots") }

func UpdateStreet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto namePatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Street](c, id, &dto)
}

func DeleteStreet(c *fiber.Ctx) error { return destroy[models.Street](c) }

// Plot and property status is owned by the file lifecycle, so neither DTO
// carries it.

type plotDTO struct {
	StreetID   uint            `json:"street_id" validate:"required"`
	PlotNumber string          `json:"plot_number" validate:"required,max=50"`
	Size       decimal.Decimal `json:"size" validate:"gte=0"`
	SizeUnit   string          `json:"size_unit" validate:"omitempty,oneof=marla kanal sqft sqyd"`
	Price      decimal.Decimal `json:"price" validate:"gte=0"`
	Corner     bool            `json:"corner"`
}

type plotPatch struct {
	PlotNumber *string          `json:"plot_number" validate:"omitempty,min=1,max=50"`
	Size       *decimal.Decimal `json:"size" validate:"omitempty,gte=0"`
	SizeUnit   *string          `json:"size_unit" validate:"omitempty,oneof=marla kanal sqft sqyd"`
	Price      *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Corner     *bool            `json:"corner"`
}

func CreatePlot(c *fiber.Ctx) error {
	var dto plotDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Plot{
		StreetID:   dto.StreetID,
		PlotNumber: dto.PlotNumber,
		Size:       dto.Size,
		SizeUnit:   dto.SizeUnit,
		Price:      dto.Price,
		Corner:     dto.Corner,
		Status:     models.InventoryAvailable,
	})
}

func GetPlots(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	street, err := optionalID(c, "street_id")
	if err != nil {
		return err
	}
	if street != nil {
		db = db.Where("street_id = ?", *street)
	}
	if s := models.InventoryStatus(c.Query("status")); s != "" {
		if !s.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		db = db.Where("status = ?", s)
	}
	return list[models.Plot](c, db, "street_id, plot_number")
}

func GetPlot(c *fiber.Ctx) error { return show[models.Plot](c) }

func UpdatePlot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto plotPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Plot](c, id, &dto)
}

func DeletePlot(c *fiber.Ctx) error { return destroyAsset[models.Plot](c) }

type propertyDTO struct {
	Title    string              `json:"title" validate:"required,max=200"`
	Type     models.PropertyType `json:"type" validate:"required,enum"`
	StreetID *uint               `json:"street_id"`
	Address  string              `json:"address"`
	Area     decimal.Decimal     `json:"area" validate:"gte=0"`
	Bedrooms int                 `json:"bedrooms" validate:"gte=0,lte=50"`
	Price    decimal.Decimal     `json:"price" validate:"gte=0"`
}

type propertyPatch struct {
	Title    *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Type     *models.PropertyType `json:"type" validate:"omitempty,enum"`
	StreetID *uint                `json:"street_id"`
	Address  *string              `json:"address"`
	Area     *decimal.Decimal     `json:"area" validate:"omitempty,gte=0"`
	Bedrooms *int                 `json:"bedrooms" validate:"omitempty,gte=0,lte=50"`
	Price    *decimal.Decimal     `json:"price" validate:"omitempty,gte=0"`
}

func CreateProperty(c *fiber.Ctx) error {
	var dto propertyDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Property{
		Title:    dto.Title,
		Type:     dto.Type,
		StreetID: dto.StreetID,
		Address:  dto.Address,
		Area:     dto.Area,
		Bedrooms: dto.Bedrooms,
		Price:    dto.Price,
		Status:   models.InventoryAvailable,
	})
}

func GetProperties(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	street, err := optionalID(c, "street_id")
	if err != nil {
		return err
	}
	if street != nil {
		db = db.Where("street_id = ?", *street)
	}
	if s := models.InventoryStatus(c.Query("status")); s != "" {
		if !s.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		db = db.Where("status = ?", s)
	}
	if t := models.PropertyType(c.Query("type")); t != "" {
		if !t.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid type")
		}
		db = db.Where("type = ?", t)
	}
	return list[models.Property](c, db, "id")
}

func GetProperty(c *fiber.Ctx) error { return show[models.Property](c) }

func UpdateProperty(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto propertyPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Property](c, id, &dto)
}

func DeleteProperty(c *fiber.Ctx) error { return destroyAsset[models.Property](c) }

// destroyAsset deletes a plot or property only while nothing is booked on it.
func destroyAsset[T any](c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	res := db.Where("status = ?", models.InventoryAvailable).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var rec T
		if err := db.First(&rec, id).Error; err != nil {
			return err
		}
		return fmt.Errorf("%w: only available inventory can be deleted", services.ErrAssetUnavailable)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func statusOr(s models.RecordStatus) models.RecordStatus {
	if s == "" {
		return models.StatusActive
	}
	return s
}
