package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client represents a billable customer.
// Implements the Ownable interface for ownership-based authorization.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of this client (multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`
	City    string `gorm:"size:100" json:"city,omitempty"`
	Country string `gorm:"size:100" json:"country,omitempty"`
	TaxID   string `gorm:"size:50" json:"tax_id,omitempty"`
}

// GetUserID implements the Ownable interface.
func (c *Client) GetUserID() uint {
	return c.UserID
}

// FullAddress returns the postal address as a multi-line string,
// skipping empty components.
func (c *Client) FullAddress() string {
	var parts []string
	if c.Address != "" {
		parts = append(parts, c.Address)
	}
	if c.City != "" {
		parts = append(parts, c.City)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	return strings.Join(parts, "\n")
}
