package controllers

import (
	"fmt"
	"time"

	"realestate-crm/database"
	"realestate-crm/models"
	"realestate-crm/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

type clientDTO struct {
	Name    string              `json:"name" validate:"required,max=150"`
	CNIC    string              `json:"cnic" validate:"omitempty,max=20"`
	Phone   string              `json:"phone" validate:"required,max=30"`
	Email   string              `json:"email" validate:"omitempty,email,max=150"`
	Address string              `json:"address"`
	Status  models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

type clientPatch struct {
	Name    *string              `json:"name" validate:"omitempty,min=1,max=150"`
	CNIC    *string              `json:"cnic" validate:"omitempty,max=20"`
	Phone   *string              `json:"phone" validate:"omitempty,min=1,max=30"`
	Email   *string              `json:"email" validate:"omitempty,email,max=150"`
	Address *string              `json:"address"`
	Status  *models.RecordStatus `json:"status" validate:"omitempty,enum"`
}

func CreateClient(c *fiber.Ctx) error {
	var dto clientDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	return create(c, &models.Client{
		Name:    dto.Name,
		CNIC:    dto.CNIC,
		Phone:   dto.Phone,
		Email:   dto.Email,
		Address: dto.Address,
		Status:  statusOr(dto.Status),
	})
}

func GetClients(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if s := c.Query("status"); s != "" {
		db = db.Where("status = ?", s)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		db = db.Where("name ILIKE ? OR phone ILIKE ? OR cnic ILIKE ?", like, like, like)
	}
	return list[models.Client](c, db, "name")
}

func GetClient(c *fiber.Ctx) error { return show[models.Client](c) }

func UpdateClient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto clientPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Client](c, id, &dto)
}

func DeleteClient(c *fiber.Ctx) error { return destroy[models.Client](c) }

type leadDTO struct {
	Name     string            `json:"name" validate:"required,max=150"`
	Phone    string            `json:"phone" validate:"required,max=30"`
	Email    string            `json:"email" validate:"omitempty,email,max=150"`
	Source   string            `json:"source" validate:"max=50"`
	DealerID *uint             `json:"dealer_id"`
	Interest *models.AssetRef  `json:"interest"`
	Notes    string            `json:"notes"`
	Status   models.LeadStatus `json:"status" validate:"omitempty,enum,ne=converted"`
}

type leadPatch struct {
	Name     *string            `json:"name" validate:"omitempty,min=1,max=150"`
	Phone    *string            `json:"phone" validate:"omitempty,min=1,max=30"`
	Email    *string            `json:"email" validate:"omitempty,email,max=150"`
	Source   *string            `json:"source" validate:"omitempty,max=50"`
	DealerID *uint              `json:"dealer_id"`
	Interest *models.AssetRef   `json:"interest"`
	Notes    *string            `json:"notes"`
	Status   *models.LeadStatus `json:"status" validate:"omitempty,enum,ne=converted"`
}

type convertLeadDTO struct {
	CNIC    string `json:"cnic" validate:"omitempty,max=20"`
	Address string `json:"address"`
}

func CreateLead(c *fiber.Ctx) error {
	var dto leadDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	status := dto.Status
	if status == "" {
		status = models.LeadNew
	}
	return create(c, &models.Lead{
		Name:     dto.Name,
		Phone:    dto.Phone,
		Email:    dto.Email,
		Source:   dto.Source,
		DealerID: dto.DealerID,
		Interest: dto.Interest,
		Notes:    dto.Notes,
		Status:   status,
	})
}

func GetLeads(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if s := c.Query("status"); s != "" {
		db = db.Where("status = ?", s)
	}
	dealer, err := optionalID(c, "dealer_id")
	if err != nil {
		return err
	}
	if dealer != nil {
		db = db.Where("dealer_id = ?", *dealer)
	}
	return list[models.Lead](c, db, "created_at DESC")
}

func GetLead(c *fiber.Ctx) error { return show[models.Lead](c) }

func UpdateLead(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto leadPatch
	if err := bindPatch(c, &dto); err != nil {
		return err
	}
	return patch[models.Lead](c, id, &dto)
}

func DeleteLead(c *fiber.Ctx) error { return destroy[models.Lead](c) }

// ConvertLead creates a client from the lead and marks the lead converted.
func ConvertLead(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto convertLeadDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	var lead models.Lead
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lead, id).Error; err != nil {
		return err
	}
	if !lead.Convertible() {
		return fmt.Errorf("%w: lead %d is %s", services.ErrInvalidState, lead.ID, lead.Status)
	}

	client := lead.ToClient(dto.CNIC, dto.Address)
	if err := db.Create(&client).Error; err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := db.Model(&lead).Updates(map[string]any{
		"status":              models.LeadConverted,
		"converted_client_id": client.ID,
		"converted_at":        now,
	}).Error; err != nil {
		return err
	}
	lead.Status = models.LeadConverted
	lead.ConvertedClientID = &client.ID
	lead.ConvertedAt = &now

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lead": lead, "client": client})
}
