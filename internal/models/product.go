package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a reusable template for invoice line items. Invoice items copy
// price, tax rate and description at creation time, so editing a product
// never rewrites existing invoices.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of this product (multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"size:500" json:"description,omitempty"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	// TaxRate is a percentage in [0,100], e.g. 21 for 21% VAT.
	TaxRate float64 `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Unit    string  `gorm:"size:50;default:'unit'" json:"unit"`
}

// GetUserID implements the Ownable interface.
func (p *Product) GetUserID() uint {
	return p.UserID
}

// PriceWithTax returns the unit price including tax.
func (p *Product) PriceWithTax() float64 {
	return p.UnitPrice * (1 + p.TaxRate/100)
}
