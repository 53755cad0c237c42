package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PropertyFile tracks one client's purchase of an asset under a payment plan.
// PaidAmount and RemainingAmount are derived from completed payments.
type PropertyFile struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	FileNumber        string          `json:"file_number" gorm:"size:32;uniqueIndex"`
	ClientID          uint            `json:"client_id" gorm:"not null;index"`
	Client            *Client         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	DealID            *uint           `json:"deal_id" gorm:"uniqueIndex"`
	DealerID          *uint           `json:"dealer_id" gorm:"index"`
	Asset             AssetRef        `json:"asset" gorm:"embedded"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	DownPayment       decimal.Decimal `json:"down_payment" gorm:"type:numeric(14,2);not null;default:0"`
	PaidAmount        decimal.Decimal `json:"paid_amount" gorm:"type:numeric(14,2);not null;default:0"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount" gorm:"type:numeric(14,2);not null"`
	FeesPaid          decimal.Decimal `json:"fees_paid" gorm:"type:numeric(14,2);not null;default:0"`
	TotalInstallments int             `json:"total_installments" gorm:"not null"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" gorm:"type:numeric(14,2);not null"`
	Frequency         Frequency       `json:"frequency" gorm:"type:varchar(16);not null"`
	StartDate         time.Time       `json:"start_date" gorm:"type:date;not null"`
	Status            FileStatus      `json:"status" gorm:"type:varchar(16);not null;default:'active';index"`
	Version           int             `json:"version" gorm:"not null;default:1"`
	Installments      []Installment   `json:"installments,omitempty" gorm:"foreignKey:FileID;constraint:OnDelete:RESTRICT"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Installment is one scheduled obligation under a file. Rows are never
// deleted; only status and paid fields change.
type Installment struct {
	ID                uint              `json:"id" gorm:"primaryKey"`
	FileID            uint              `json:"file_id" gorm:"not null;uniqueIndex:idx_installments_file_number,priority:1"`
	InstallmentNumber int               `json:"installment_number" gorm:"not null;uniqueIndex:idx_installments_file_number,priority:2"`
	Amount            decimal.Decimal   `json:"amount" gorm:"type:numeric(14,2);not null"`
	DueDate           time.Time         `json:"due_date" gorm:"type:date;not null;index"`
	PaidDate          *time.Time        `json:"paid_date" gorm:"type:date"`
	PaidAmount        decimal.Decimal   `json:"paid_amount" gorm:"type:numeric(14,2);not null;default:0"`
	LateFee           decimal.Decimal   `json:"late_fee" gorm:"type:numeric(14,2);not null;default:0"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount" gorm:"type:numeric(14,2);not null;default:0"`
	Status            InstallmentStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	DaysOverdue       int               `json:"days_overdue" gorm:"not null;default:0"`
	Version           int               `json:"version" gorm:"not null;default:1"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
