package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment is one recorded money movement against a file, optionally bound to
// an installment. PrincipalAmount + FeeAmount equals Amount once completed.
type Payment struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	ReceiptNumber   string          `json:"receipt_number" gorm:"size:32;uniqueIndex"`
	FileID          uint            `json:"file_id" gorm:"not null;index:idx_payments_file_date,priority:1"`
	InstallmentID   *uint           `json:"installment_id" gorm:"index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" gorm:"type:numeric(14,2);not null;default:0"`
	FeeAmount       decimal.Decimal `json:"fee_amount" gorm:"type:numeric(14,2);not null;default:0"`
	PaymentType     PaymentType     `json:"payment_type" gorm:"type:varchar(20);not null"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time       `json:"payment_date" gorm:"type:date;not null;index:idx_payments_file_date,priority:2"`
	Status          PaymentStatus   `json:"status" gorm:"type:varchar(16);not null;index"`
	Reference       string          `json:"reference" gorm:"size:100;index"`
	Note            string          `json:"note"`
	Meta            datatypes.JSON  `json:"meta,omitempty" gorm:"type:jsonb"` // cheque number, bank, etc.
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
