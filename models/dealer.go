package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Dealer struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"size:150;not null"`
	Agency         string          `json:"agency" gorm:"size:150"`
	Phone          string          `json:"phone" gorm:"size:30;not null"`
	Email          string          `json:"email" gorm:"size:150"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,2);not null;default:0"` // percent
	Status         RecordStatus    `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Deal is an agreed sale of one asset to a client, optionally through a dealer.
type Deal struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Reference        string          `json:"reference" gorm:"size:32;uniqueIndex"`
	ClientID         uint            `json:"client_id" gorm:"not null;index"`
	Client           *Client         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	DealerID         *uint           `json:"dealer_id" gorm:"index"`
	Dealer           *Dealer         `json:"dealer,omitempty" gorm:"foreignKey:DealerID"`
	Asset            AssetRef        `json:"asset" gorm:"embedded"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	CommissionRate   decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,2);not null;default:0"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:numeric(14,2);not null;default:0"`
	Status           DealStatus      `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	DealDate         time.Time       `json:"deal_date" gorm:"type:date;index"`
	FileID           *uint           `json:"file_id"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Commission is amount × rate / 100 rounded to cents.
func Commission(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

// ApplyCommission snapshots the dealer's rate on the deal.
func (d *Deal) ApplyCommission(rate decimal.Decimal) {
	d.CommissionRate = rate
	d.CommissionAmount = Commission(d.Amount, rate)
}
