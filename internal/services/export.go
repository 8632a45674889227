package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/models"
)

// ExportService produces client-side style exports: CSV of invoices and a
// full JSON backup. Pure formatting over loaded collections.
type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

var csvHeader = []string{"number", "client", "status", "issue_date", "due_date", "subtotal", "tax_amount", "total_amount", "currency"}

// WriteInvoicesCSV streams the user's invoices as CSV. The effective status
// is exported so a sent-but-late invoice reads as overdue, matching the list
// screen.
func (s *ExportService) WriteInvoicesCSV(ctx context.Context, w io.Writer, userID uint, now time.Time) error {
	var invoices []models.Invoice
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("issue_date asc, id asc").Find(&invoices).Error; err != nil {
		return err
	}
	var clients []models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return err
	}
	names := make(map[uint]string, len(clients))
	for i := range clients {
		names[clients[i].ID] = clients[i].Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range invoices {
		inv := &invoices[i]
		name, ok := names[inv.ClientID]
		if !ok {
			name = UnknownClientLabel
		}
		record := []string{
			inv.Number,
			name,
			string(inv.EffectiveStatus(now)),
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			formatAmount(inv.Subtotal),
			formatAmount(inv.TaxAmount),
			formatAmount(inv.TotalAmount),
			inv.Currency,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Backup is the full JSON dump of one tenant's data.
type Backup struct {
	ExportedAt  time.Time               `json:"exported_at"`
	Clients     []models.Client         `json:"clients"`
	Products    []models.Product        `json:"products"`
	Invoices    []models.Invoice        `json:"invoices"`
	Settings    *models.CompanySettings `json:"settings,omitempty"`
	Preferences *models.UserPreferences `json:"preferences,omitempty"`
}

// BuildBackup collects every collection owned by the user. Invoices carry
// their items.
func (s *ExportService) BuildBackup(ctx context.Context, userID uint, now time.Time) (*Backup, error) {
	b := &Backup{ExportedAt: now, Clients: []models.Client{}, Products: []models.Product{}, Invoices: []models.Invoice{}}
	tx := s.db.WithContext(ctx)

	if err := tx.Where("user_id = ?", userID).Find(&b.Clients).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).Find(&b.Products).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Find(&b.Invoices).Error; err != nil {
		return nil, err
	}
	var settings models.CompanySettings
	if err := tx.Where("user_id = ?", userID).First(&settings).Error; err == nil {
		b.Settings = &settings
	}
	var prefs models.UserPreferences
	if err := tx.Where("user_id = ?", userID).First(&prefs).Error; err == nil {
		b.Preferences = &prefs
	}
	return b, nil
}
