package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"size:200;not null"`
	Category    string          `json:"category" gorm:"size:50;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	ExpenseDate time.Time       `json:"expense_date" gorm:"type:date;index"`
	SocietyID   *uint           `json:"society_id" gorm:"index"`
	Asset       *AssetRef       `json:"asset,omitempty" gorm:"embedded"`
	PaidTo      string          `json:"paid_to" gorm:"size:150"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
