package models

import (
	"fmt"
	"time"
)

// InvoiceStatus represents the stored lifecycle status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"

	// InvoiceStatusOverdue is never stored. It is derived at read time from
	// a sent invoice whose due date has passed.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// ValidStatus reports whether s is a status that may be persisted.
func ValidStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice represents a billing invoice.
// Implements the Ownable interface for ownership-based authorization.
//
// Invariant: TotalAmount = Subtotal + TaxAmount, where Subtotal and TaxAmount
// are sums over the invoice's items. The three fields are recomputed from the
// item set on every save, never edited directly.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this invoice (multi-tenant isolation)
	UserID uint `gorm:"index;not null;uniqueIndex:idx_user_number,priority:1" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Number is unique per user, sequential by convention (FAC-2026-0001).
	Number string `gorm:"size:50;not null;uniqueIndex:idx_user_number,priority:2" json:"number"`

	// Client relationship. The reference may dangle if the client is deleted
	// later; readers must tolerate a missing client.
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Status    InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	IssueDate time.Time     `gorm:"not null" json:"issue_date"`
	DueDate   time.Time     `gorm:"not null" json:"due_date"`

	Subtotal    float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount   float64 `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	TotalAmount float64 `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	Currency string `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Notes    string `gorm:"type:text" json:"notes,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// GetUserID implements the Ownable interface.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// IsOverdue reports whether the invoice should display as overdue: it was
// sent and its due date has passed. The stored status is never mutated.
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusSent && i.DueDate.Before(now)
}

// EffectiveStatus returns the display status, substituting the derived
// overdue state for sent invoices past their due date.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.IsOverdue(now) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// InvoiceItem is a single priced line within an invoice. Items are owned
// exclusively by their invoice: they are deleted with it and replaced
// wholesale on every edit.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	// Optional reference to the originating product (nil for custom lines).
	ProductID *uint    `gorm:"index" json:"product_id,omitempty"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	// Values copied from the product (or entered directly) at creation time.
	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(10,3);not null;default:1" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	// TaxRate is a percentage in [0,100].
	TaxRate   float64 `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	LineTotal float64 `gorm:"type:decimal(12,2);not null" json:"line_total"`

	// Position preserves the line order within the invoice.
	Position int `gorm:"default:0" json:"position"`
}

// Subtotal returns the pre-tax amount for this line (quantity × unit price).
// No validation is applied here; out-of-range inputs propagate arithmetically.
func (item *InvoiceItem) Subtotal() float64 {
	return item.Quantity * item.UnitPrice
}

// Tax returns the tax amount due for this line.
func (item *InvoiceItem) Tax() float64 {
	return item.Subtotal() * item.TaxRate / 100
}

// Total returns the tax-inclusive line total.
func (item *InvoiceItem) Total() float64 {
	return item.Subtotal() + item.Tax()
}

// FormatNumber formats a sequential invoice number for a given prefix and
// year, e.g. FAC-2026-0042.
func FormatNumber(prefix string, year int, seq int64) string {
	if prefix == "" {
		prefix = "FAC"
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
