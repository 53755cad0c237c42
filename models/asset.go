package models

import (
	"errors"
	"fmt"
)

var ErrInvalidAsset = errors.New("invalid asset reference")

type AssetKind string

const (
	AssetPlot     AssetKind = "plot"
	AssetProperty AssetKind = "property"
)

func (k AssetKind) Valid() bool {
	return k == AssetPlot || k == AssetProperty
}

// AssetRef points at exactly one sellable unit: a plot or a property.
// It replaces the type-name plus id pair of polymorphic associations.
type AssetRef struct {
	Kind AssetKind `json:"kind" gorm:"column:asset_kind;type:varchar(16)" validate:"required,enum"`
	ID   uint      `json:"id" gorm:"column:asset_id" validate:"required"`
}

func PlotRef(id uint) AssetRef {
	return AssetRef{Kind: AssetPlot, ID: id}
}

func PropertyRef(id uint) AssetRef {
	return AssetRef{Kind: AssetProperty, ID: id}
}

func (a AssetRef) IsZero() bool {
	return a.Kind == "" && a.ID == 0
}

func (a AssetRef) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAsset, a.Kind)
	}
	if a.ID == 0 {
		return fmt.Errorf("%w: missing id", ErrInvalidAsset)
	}
	return nil
}

func (a AssetRef) String() string {
	return fmt.Sprintf("%s:%d", a.Kind, a.ID)
}
