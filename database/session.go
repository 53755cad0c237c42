package database

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var ErrNotInitialized = errors.New("database not initialized")

// GetDB returns the request's transaction when middlewares.RequestTx opened
// one, else a fresh session on DB bound to the request context.
func GetDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, ErrNotInitialized
	}
	return DB.Session(&gorm.Session{Context: c.UserContext()}), nil
}
