package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Society struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"size:150;not null;uniqueIndex"`
	City      string       `json:"city" gorm:"size:100"`
	Address   string       `json:"address"`
	Status    RecordStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	Blocks    []Block      `json:"blocks,omitempty" gorm:"foreignKey:SocietyID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Block struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	SocietyID uint         `json:"society_id" gorm:"not null;uniqueIndex:idx_blocks_society_name,priority:1"`
	Name      string       `json:"name" gorm:"size:100;not null;uniqueIndex:idx_blocks_society_name,priority:2"`
	Status    RecordStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	Streets   []Street     `json:"streets,omitempty" gorm:"foreignKey:BlockID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Street struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	BlockID   uint         `json:"block_id" gorm:"not null;uniqueIndex:idx_streets_block_name,priority:1"`
	Name      string       `json:"name" gorm:"size:100;not null;uniqueIndex:idx_streets_block_name,priority:2"`
	Status    RecordStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	Plots     []Plot       `json:"plots,omitempty" gorm:"foreignKey:StreetID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Plot struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	StreetID   uint            `json:"street_id" gorm:"not null;uniqueIndex:idx_plots_street_number,priority:1"`
	PlotNumber string          `json:"plot_number" gorm:"size:50;not null;uniqueIndex:idx_plots_street_number,priority:2"`
	Size       decimal.Decimal `json:"size" gorm:"type:numeric(10,2)"`
	SizeUnit   string          `json:"size_unit" gorm:"size:20"` // marla, kanal, sqft
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Corner     bool            `json:"corner"`
	Status     InventoryStatus `json:"status" gorm:"type:varchar(16);not null;default:'available';index"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Property struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Title     string          `json:"title" gorm:"size:200;not null"`
	Type      PropertyType    `json:"type" gorm:"type:varchar(16);not null"`
	StreetID  *uint           `json:"street_id" gorm:"index"`
	Address   string          `json:"address"`
	Area      decimal.Decimal `json:"area" gorm:"type:numeric(10,2)"`
	Bedrooms  int             `json:"bedrooms"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Status    InventoryStatus `json:"status" gorm:"type:varchar(16);not null;default:'available';index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
