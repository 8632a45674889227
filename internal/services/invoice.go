package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/policy"
	"github.com/facturapro/facturapro/internal/validation"
)

// ErrNotFound is returned when a record does not exist for the tenant.
var ErrNotFound = errors.New("not found")

// ValidationError carries field-level violations detected before any write.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
}

// ComputeTotals sums the line items into subtotal, tax amount and grand
// total. Pure and order-independent.
func ComputeTotals(items []models.InvoiceItem) (subtotal, taxAmount, total float64) {
	for i := range items {
		subtotal += items[i].Subtotal()
		taxAmount += items[i].Tax()
	}
	total = subtotal + taxAmount
	return
}

// ValidateItems checks the line item set before persistence: at least one
// item, non-empty descriptions, quantity > 0, unit price ≥ 0, tax rate in
// [0,100]. Field keys are indexed so the client can point at the faulty line.
func ValidateItems(items []models.InvoiceItem) validation.Violations {
	v := make(validation.Violations)
	if len(items) == 0 {
		v["items"] = "no_items"
		return v
	}
	for i := range items {
		prefix := "items." + strconv.Itoa(i) + "."
		validation.Required(prefix+"description", items[i].Description, v)
		validation.PositiveFloat(prefix+"quantity", items[i].Quantity, v)
		validation.NonNegativeFloat(prefix+"unit_price", items[i].UnitPrice, v)
		validation.RangeFloat(prefix+"tax_rate", items[i].TaxRate, 0, 100, v)
	}
	return v
}

// InvoiceService owns invoice persistence: validation, numbering, totals and
// the atomic replace-all-items save.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// NextNumber allocates the next sequential invoice number for a user and
// year: <prefix>-<year>-NNNN. Counting happens inside the caller's
// transaction so concurrent saves cannot both observe the same sequence; the
// per-user unique index on number backstops any race.
func (s *InvoiceService) NextNumber(tx *gorm.DB, userID uint, year int) (string, error) {
	prefix := "FAC"
	var settings models.CompanySettings
	if err := tx.Where("user_id = ?", userID).First(&settings).Error; err == nil && settings.InvoicePrefix != "" {
		prefix = settings.InvoicePrefix
	}
	var count int64
	err := tx.Model(&models.Invoice{}).
		Where("user_id = ? AND number LIKE ?", userID, fmt.Sprintf("%s-%d-%%", prefix, year)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return models.FormatNumber(prefix, year, count+1), nil
}

// Save validates and persists an invoice together with its full item set.
// Totals are always recomputed from the items; any previously stored items
// are replaced. The whole sequence runs in one transaction so a failure
// leaves no partial state. Status transitions are the caller's business —
// Save only derives monetary fields.
func (s *InvoiceService) Save(ctx context.Context, inv *models.Invoice, items []models.InvoiceItem) error {
	v := make(validation.Violations)
	if inv.ClientID == 0 {
		v["client_id"] = "required"
	}
	if inv.IssueDate.IsZero() {
		v["issue_date"] = "required"
	}
	if inv.DueDate.IsZero() {
		v["due_date"] = "required"
	}
	if !models.ValidStatus(inv.Status) {
		v["status"] = "invalid_value"
	}
	v.Merge(ValidateItems(items))
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}

	for i := range items {
		items[i].ID = 0
		items[i].InvoiceID = inv.ID
		items[i].Position = i
		items[i].LineTotal = items[i].Total()
	}
	inv.Subtotal, inv.TaxAmount, inv.TotalAmount = ComputeTotals(items)
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inv.ID == 0 {
			if inv.Number == "" {
				number, err := s.NextNumber(tx, inv.UserID, inv.IssueDate.Year())
				if err != nil {
					return err
				}
				inv.Number = number
			}
			inv.Items = nil
			if err := tx.Create(inv).Error; err != nil {
				return err
			}
		} else {
			// The stored row must exist and belong to the caller before any
			// item is touched; a foreign or deleted id reads as not found.
			var existing models.Invoice
			if err := tx.First(&existing, inv.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if !policy.Owns(inv.UserID, &existing) {
				return ErrNotFound
			}
			inv.Items = nil
			res := tx.Model(&models.Invoice{}).
				Where("id = ? AND user_id = ?", inv.ID, inv.UserID).
				Select("ClientID", "Number", "Status", "IssueDate", "DueDate",
					"Subtotal", "TaxAmount", "TotalAmount", "Currency", "Notes").
				Updates(inv)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		inv.Items = items
		return nil
	})
}

// Get loads one invoice with client and items, scoped to the tenant.
func (s *InvoiceService) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Delete removes an invoice and its items atomically.
func (s *InvoiceService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}

// transitions enumerates the permitted status changes. Overdue is derived,
// never stored, so it appears on neither side.
var transitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceStatusDraft: {models.InvoiceStatusSent, models.InvoiceStatusCancelled},
	models.InvoiceStatusSent:  {models.InvoiceStatusPaid, models.InvoiceStatusDraft, models.InvoiceStatusCancelled},
	models.InvoiceStatusPaid:  {models.InvoiceStatusCancelled},
}

// CanTransition reports whether an invoice may move from one stored status
// to another.
func CanTransition(from, to models.InvoiceStatus) bool {
	for _, allowed := range transitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned for a status change outside the allowed
// lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// SetStatus applies a caller-driven status transition.
func (s *InvoiceService) SetStatus(ctx context.Context, userID, id uint, to models.InvoiceStatus) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !models.ValidStatus(to) || !CanTransition(inv.Status, to) {
		return nil, ErrInvalidTransition
	}
	inv.Status = to
	if err := s.db.WithContext(ctx).Model(&inv).Update("status", to).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}
