package models

import (
	"time"
)

// CompanySettings holds the user's company information printed on invoices,
// plus invoicing defaults. Exactly one row per user.
type CompanySettings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Company information
	Name    string `gorm:"size:255" json:"name"`
	TaxID   string `gorm:"size:50" json:"tax_id,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`

	// Invoicing defaults
	InvoicePrefix   string  `gorm:"size:20;default:'FAC'" json:"invoice_prefix"`
	DefaultTaxRate  float64 `gorm:"type:decimal(5,2);default:21" json:"default_tax_rate"`
	DefaultCurrency string  `gorm:"size:3;default:'EUR'" json:"default_currency"`
	PaymentTermDays int     `gorm:"default:30" json:"payment_term_days"`
}

// GetUserID implements the Ownable interface.
func (c *CompanySettings) GetUserID() uint {
	return c.UserID
}

// UserPreferences holds per-user UI preferences. Exactly one row per user.
type UserPreferences struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Language           string `gorm:"size:5;default:'es'" json:"language"`
	Theme              string `gorm:"size:20;default:'system'" json:"theme"`
	EmailNotifications bool   `gorm:"default:true" json:"email_notifications"`
	OverdueReminders   bool   `gorm:"default:true" json:"overdue_reminders"`
}

// GetUserID implements the Ownable interface.
func (p *UserPreferences) GetUserID() uint {
	return p.UserID
}
