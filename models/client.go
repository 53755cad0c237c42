package models

import "time"

type Client struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"size:150;not null"`
	CNIC      string       `json:"cnic" gorm:"size:20;uniqueIndex"`
	Phone     string       `json:"phone" gorm:"size:30;not null"`
	Email     string       `json:"email" gorm:"size:150"`
	Address   string       `json:"address"`
	Status    RecordStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Lead struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Name              string     `json:"name" gorm:"size:150;not null"`
	Phone             string     `json:"phone" gorm:"size:30;not null"`
	Email             string     `json:"email" gorm:"size:150"`
	Source            string     `json:"source" gorm:"size:50"` // walk-in, referral, portal
	DealerID          *uint      `json:"dealer_id" gorm:"index"`
	Interest          *AssetRef  `json:"interest,omitempty" gorm:"embedded;embeddedPrefix:interest_"`
	Notes             string     `json:"notes"`
	Status            LeadStatus `json:"status" gorm:"type:varchar(16);not null;default:'new';index"`
	ConvertedClientID *uint      `json:"converted_client_id"`
	ConvertedAt       *time.Time `json:"converted_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Convertible reports whether the lead can still become a client.
func (l *Lead) Convertible() bool {
	return l.Status != LeadConverted && l.Status != LeadLost
}

// ToClient builds the client record a converted lead turns into.
func (l *Lead) ToClient(cnic, address string) Client {
	return Client{
		Name:    l.Name,
		CNIC:    cnic,
		Phone:   l.Phone,
		Email:   l.Email,
		Address: address,
		Status:  StatusActive,
	}
}
