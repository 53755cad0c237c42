package controllers

import (
	"strconv"
	"time"

	"realestate-crm/database"
	"realestate-crm/middlewares"
	"realestate-crm/repository"
	"realestate-crm/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// idParam reads a positive numeric path parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

// optionalID reads a numeric query value; empty means no filter.
func optionalID(c *fiber.Ctx, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	id := uint(v)
	return &id, nil
}

func queryDate(c *fiber.Ctx, key string, def time.Time) (time.Time, error) {
	t, err := utils.ParseDate(c.Query(key), def)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return t, nil
}

func queryPeriod(c *fiber.Ctx) (repository.Period, error) {
	from, err := queryDate(c, "from", time.Time{})
	if err != nil {
		return repository.Period{}, err
	}
	to, err := queryDate(c, "to", time.Time{})
	if err != nil {
		return repository.Period{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return repository.Period{}, fiber.NewError(fiber.StatusBadRequest, "to is before from")
	}
	return repository.Period{From: from, To: to}, nil
}

// bodyDate parses an optional YYYY-MM-DD body field already checked by the validator.
func bodyDate(s string, def time.Time) (time.Time, error) {
	t, err := utils.ParseDate(s, def)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return t, nil
}

// bind parses and validates the body, then normalizes it for storage.
func bind(c *fiber.Ctx, dto any) error {
	if err := middlewares.BindAndValidate(c, dto); err != nil {
		return err
	}
	utils.NormalizeDTO(dto)
	return nil
}

func bindPatch(c *fiber.Ctx, dto any) error {
	if err := middlewares.BindAndValidate(c, dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(dto)
	return nil
}

// list pages through q and writes {"items", "total"}.
func list[T any](c *fiber.Ctx, q *gorm.DB, order string) error {
	limit, offset := utils.Page(c.Query("limit"), c.Query("offset"))
	var total int64
	if err := q.Session(&gorm.Session{}).Model(new(T)).Count(&total).Error; err != nil {
		return err
	}
	items := make([]T, 0)
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items, "total": total, "limit": limit, "offset": offset})
}

func show[T any](c *fiber.Ctx, preload ...string) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	for _, p := range preload {
		db = db.Preload(p)
	}
	var rec T
	if err := db.First(&rec, id).Error; err != nil {
		return err
	}
	return c.JSON(rec)
}

func create[T any](c *fiber.Ctx, rec *T) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if err := db.Create(rec).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// patch applies the non-nil fields of dto to record id and returns the fresh row.
func patch[T any](c *fiber.Ctx, id uint, dto any) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	var rec T
	if err := db.First(&rec, id).Error; err != nil {
		return err
	}
	if updates := utils.UpdatesFromPtrDTO(dto, nil); len(updates) > 0 {
		if err := db.Model(&rec).Updates(updates).Error; err != nil {
			return err
		}
		if err := db.First(&rec, id).Error; err != nil {
			return err
		}
	}
	return c.JSON(rec)
}

func destroy[T any](c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	res := db.Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// optionalBody binds dto only when the request carries a body.
func optionalBody(c *fiber.Ctx, dto any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return bind(c, dto)
}
