package db

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/models"
)

// Seed inserts a demo tenant with a few clients, products and invoices.
// Idempotent: it does nothing if the demo user already exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "demo@facturapro.test").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Email: "demo@facturapro.test", Name: "Demo", Password: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	clients := []models.Client{
		{UserID: user.ID, Name: "Empresa ABC S.A.", Email: "contabilidad@abc.example", City: "Madrid", Country: "España"},
		{UserID: user.ID, Name: "Comercial XYZ Ltda.", Email: "admin@xyz.example", City: "Barcelona", Country: "España"},
	}
	if err := db.Create(&clients).Error; err != nil {
		return err
	}

	products := []models.Product{
		{UserID: user.ID, Name: "Consultoría", Description: "Hora de consultoría", UnitPrice: 60, TaxRate: 21, Unit: "hora"},
		{UserID: user.ID, Name: "Desarrollo web", UnitPrice: 45, TaxRate: 21, Unit: "hora"},
	}
	if err := db.Create(&products).Error; err != nil {
		return err
	}

	settings := models.CompanySettings{
		UserID: user.ID, Name: "FacturaPro Consulting", TaxID: "B87654321",
		Email: "contacto@facturapro.test", InvoicePrefix: "FAC",
		DefaultTaxRate: 21, DefaultCurrency: "EUR", PaymentTermDays: 30,
	}
	if err := db.Create(&settings).Error; err != nil {
		return err
	}
	prefs := models.UserPreferences{UserID: user.ID, Language: "es", Theme: "system", EmailNotifications: true, OverdueReminders: true}
	if err := db.Create(&prefs).Error; err != nil {
		return err
	}

	now := time.Now()
	inv := models.Invoice{
		UserID:    user.ID,
		ClientID:  clients[0].ID,
		Number:    models.FormatNumber("FAC", now.Year(), 1),
		Status:    models.InvoiceStatusSent,
		IssueDate: now.AddDate(0, 0, -10),
		DueDate:   now.AddDate(0, 0, 20),
		Currency:  "EUR",
	}
	items := []models.InvoiceItem{
		{Description: "Consultoría", Quantity: 8, UnitPrice: 60, TaxRate: 21, Position: 0},
	}
	for idx := range items {
		items[idx].LineTotal = items[idx].Total()
		inv.Subtotal += items[idx].Subtotal()
		inv.TaxAmount += items[idx].Tax()
	}
	inv.TotalAmount = inv.Subtotal + inv.TaxAmount
	inv.Items = items
	return db.Create(&inv).Error
}
