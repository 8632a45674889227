package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/models"
)

// UnknownClientLabel is shown when an invoice references a client that no
// longer exists. A deleted client must never break a report.
const UnknownClientLabel = "unknown client"

// Period selects the reporting date range.
type Period string

const (
	PeriodLast30Days   Period = "last-30-days"
	PeriodLast3Months  Period = "last-3-months"
	PeriodLast6Months  Period = "last-6-months"
	PeriodLast12Months Period = "last-12-months"
	PeriodThisYear     Period = "this-year"
)

// ErrInvalidPeriod is returned for an unrecognized period selector.
var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod validates a period selector from the API.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodLast30Days, PeriodLast3Months, PeriodLast6Months, PeriodLast12Months, PeriodThisYear:
		return Period(s), nil
	case "":
		return PeriodLast12Months, nil
	}
	return "", ErrInvalidPeriod
}

// Start returns the inclusive lower bound of the period relative to now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodLast30Days:
		return now.AddDate(0, 0, -30)
	case PeriodLast3Months:
		return now.AddDate(0, -3, 0)
	case PeriodLast6Months:
		return now.AddDate(0, -6, 0)
	case PeriodThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return now.AddDate(0, -12, 0)
	}
}

// MonthRevenue is one bucket of the trailing twelve-month revenue series.
type MonthRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
}

// ClientRevenue ranks a client by paid revenue.
type ClientRevenue struct {
	ClientID uint    `json:"client_id"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Invoices int     `json:"invoices"`
}

// Summary is the period report: revenue, status breakdown, the fixed
// twelve-point monthly series and the top-5 client ranking.
type Summary struct {
	Period              Period          `json:"period"`
	TotalRevenue        float64         `json:"total_revenue"`
	PaidCount           int             `json:"paid_count"`
	SentCount           int             `json:"sent_count"`
	DraftCount          int             `json:"draft_count"`
	OverdueCount        int             `json:"overdue_count"`
	AverageInvoiceValue float64         `json:"average_invoice_value"`
	MonthlyRevenue      []MonthRevenue  `json:"monthly_revenue"`
	TopClients          []ClientRevenue `json:"top_clients"`
}

// DashboardStats mirrors the landing screen counters.
type DashboardStats struct {
	TotalInvoices int     `json:"total_invoices"`
	TotalRevenue  float64 `json:"total_revenue"`
	PendingAmount float64 `json:"pending_amount"`
	OverdueAmount float64 `json:"overdue_amount"`
	PaidInvoices  int     `json:"paid_invoices"`
	DraftInvoices int     `json:"draft_invoices"`
}

// Dashboard is the stats block plus the most recent invoices.
type Dashboard struct {
	Stats  DashboardStats   `json:"stats"`
	Recent []InvoiceSummary `json:"recent"`
}

// InvoiceSummary is a display row: the effective status substitutes the
// derived overdue state without touching the stored one.
type InvoiceSummary struct {
	ID              uint                 `json:"id"`
	Number          string               `json:"number"`
	ClientName      string               `json:"client_name"`
	Status          models.InvoiceStatus `json:"status"`
	EffectiveStatus models.InvoiceStatus `json:"effective_status"`
	IssueDate       time.Time            `json:"issue_date"`
	DueDate         time.Time            `json:"due_date"`
	TotalAmount     float64              `json:"total_amount"`
	Currency        string               `json:"currency"`
}

// ReportService derives report views from the invoice and client
// collections. Aggregation happens in memory over the tenant's invoices,
// mirroring how the screens consume the data.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) loadInvoices(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&invoices).Error
	return invoices, err
}

// clientNames resolves client ids to display names. Missing (deleted)
// clients resolve to the sentinel label.
func (s *ReportService) clientNames(ctx context.Context, userID uint) (map[uint]string, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(clients))
	for i := range clients {
		names[clients[i].ID] = clients[i].Name
	}
	return names, nil
}

// Summarize builds the period report for a user as of now.
func (s *ReportService) Summarize(ctx context.Context, userID uint, period Period, now time.Time) (*Summary, error) {
	invoices, err := s.loadInvoices(ctx, userID)
	if err != nil {
		return nil, err
	}
	names, err := s.clientNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := period.Start(now)
	sum := &Summary{Period: period}

	type clientAgg struct {
		revenue  float64
		invoices int
	}
	byClient := make(map[uint]*clientAgg)

	// Trailing 12 calendar months ending at the current month.
	seriesStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	sum.MonthlyRevenue = make([]MonthRevenue, 12)
	for i := 0; i < 12; i++ {
		m := seriesStart.AddDate(0, i, 0)
		sum.MonthlyRevenue[i] = MonthRevenue{Year: m.Year(), Month: int(m.Month())}
	}

	for i := range invoices {
		inv := &invoices[i]

		// Monthly series buckets paid invoices by creation timestamp,
		// independently of the selected period.
		if inv.Status == models.InvoiceStatusPaid && !inv.CreatedAt.Before(seriesStart) && inv.CreatedAt.Before(seriesStart.AddDate(0, 12, 0)) {
			idx := (inv.CreatedAt.Year()-seriesStart.Year())*12 + int(inv.CreatedAt.Month()) - int(seriesStart.Month())
			if idx >= 0 && idx < 12 {
				sum.MonthlyRevenue[idx].Revenue += inv.TotalAmount
			}
		}

		if inv.IssueDate.Before(start) || inv.IssueDate.After(now) {
			continue
		}
		switch inv.Status {
		case models.InvoiceStatusPaid:
			sum.PaidCount++
			sum.TotalRevenue += inv.TotalAmount
			agg := byClient[inv.ClientID]
			if agg == nil {
				agg = &clientAgg{}
				byClient[inv.ClientID] = agg
			}
			agg.revenue += inv.TotalAmount
			agg.invoices++
		case models.InvoiceStatusSent:
			if inv.IsOverdue(now) {
				sum.OverdueCount++
			} else {
				sum.SentCount++
			}
		case models.InvoiceStatusDraft:
			sum.DraftCount++
		}
	}

	if sum.PaidCount > 0 {
		sum.AverageInvoiceValue = sum.TotalRevenue / float64(sum.PaidCount)
	}

	ranking := make([]ClientRevenue, 0, len(byClient))
	for id, agg := range byClient {
		name, ok := names[id]
		if !ok {
			name = UnknownClientLabel
		}
		ranking = append(ranking, ClientRevenue{ClientID: id, Name: name, Revenue: agg.revenue, Invoices: agg.invoices})
	}
	// Descending revenue; ties broken by ascending client id for stability.
	sort.Slice(ranking, func(a, b int) bool {
		if ranking[a].Revenue != ranking[b].Revenue {
			return ranking[a].Revenue > ranking[b].Revenue
		}
		return ranking[a].ClientID < ranking[b].ClientID
	})
	if len(ranking) > 5 {
		ranking = ranking[:5]
	}
	sum.TopClients = ranking

	return sum, nil
}

// BuildDashboard derives the landing screen stats and recent invoice rows.
func (s *ReportService) BuildDashboard(ctx context.Context, userID uint, now time.Time) (*Dashboard, error) {
	invoices, err := s.loadInvoices(ctx, userID)
	if err != nil {
		return nil, err
	}
	names, err := s.clientNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Recent: []InvoiceSummary{}}
	for i := range invoices {
		inv := &invoices[i]
		d.Stats.TotalInvoices++
		switch {
		case inv.Status == models.InvoiceStatusPaid:
			d.Stats.PaidInvoices++
			d.Stats.TotalRevenue += inv.TotalAmount
		case inv.IsOverdue(now):
			d.Stats.OverdueAmount += inv.TotalAmount
		case inv.Status == models.InvoiceStatusSent:
			d.Stats.PendingAmount += inv.TotalAmount
		case inv.Status == models.InvoiceStatusDraft:
			d.Stats.DraftInvoices++
		}
	}

	sort.Slice(invoices, func(a, b int) bool {
		return invoices[a].CreatedAt.After(invoices[b].CreatedAt)
	})
	for i := 0; i < len(invoices) && i < 5; i++ {
		inv := &invoices[i]
		name, ok := names[inv.ClientID]
		if !ok {
			name = UnknownClientLabel
		}
		d.Recent = append(d.Recent, InvoiceSummary{
			ID:              inv.ID,
			Number:          inv.Number,
			ClientName:      name,
			Status:          inv.Status,
			EffectiveStatus: inv.EffectiveStatus(now),
			IssueDate:       inv.IssueDate,
			DueDate:         inv.DueDate,
			TotalAmount:     inv.TotalAmount,
			Currency:        inv.Currency,
		})
	}
	return d, nil
}
