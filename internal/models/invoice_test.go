package models

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestInvoiceItemMath(t *testing.T) {
	item := InvoiceItem{Quantity: 2, UnitPrice: 100, TaxRate: 21}
	if got := item.Subtotal(); !almostEqual(got, 200) {
		t.Fatalf("subtotal = %v, want 200", got)
	}
	if got := item.Tax(); !almostEqual(got, 42) {
		t.Fatalf("tax = %v, want 42", got)
	}
	if got := item.Total(); !almostEqual(got, 242) {
		t.Fatalf("total = %v, want 242", got)
	}
}

func TestInvoiceItemMathTwoLines(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: 2, UnitPrice: 100, TaxRate: 21},
		{Quantity: 1, UnitPrice: 50, TaxRate: 10},
	}
	var subtotal, tax float64
	for i := range items {
		subtotal += items[i].Subtotal()
		tax += items[i].Tax()
	}
	if !almostEqual(subtotal, 250) {
		t.Fatalf("subtotal = %v, want 250", subtotal)
	}
	if !almostEqual(tax, 47) {
		t.Fatalf("tax = %v, want 47", tax)
	}
	if total := subtotal + tax; !almostEqual(total, 297) {
		t.Fatalf("total = %v, want 297", total)
	}
}

func TestInvoiceItemZeroTaxRate(t *testing.T) {
	item := InvoiceItem{Quantity: 3, UnitPrice: 10, TaxRate: 0}
	if got := item.Tax(); !almostEqual(got, 0) {
		t.Fatalf("tax = %v, want 0", got)
	}
	if got := item.Total(); !almostEqual(got, 30) {
		t.Fatalf("total = %v, want 30", got)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	// Overdue is derived, never stored.
	if ValidStatus(InvoiceStatusOverdue) {
		t.Error("ValidStatus(overdue) = true, want false")
	}
	if ValidStatus("bogus") {
		t.Error("ValidStatus(bogus) = true, want false")
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)
	future := now.AddDate(0, 0, 5)

	tests := []struct {
		name   string
		status InvoiceStatus
		due    time.Time
		want   InvoiceStatus
	}{
		{"sent past due", InvoiceStatusSent, past, InvoiceStatusOverdue},
		{"sent not yet due", InvoiceStatusSent, future, InvoiceStatusSent},
		{"draft past due stays draft", InvoiceStatusDraft, past, InvoiceStatusDraft},
		{"paid past due stays paid", InvoiceStatusPaid, past, InvoiceStatusPaid},
		{"cancelled past due stays cancelled", InvoiceStatusCancelled, past, InvoiceStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invoice{Status: tt.status, DueDate: tt.due}
			if got := inv.EffectiveStatus(now); got != tt.want {
				t.Fatalf("EffectiveStatus = %q, want %q", got, tt.want)
			}
			// The stored status must never change.
			if inv.Status != tt.status {
				t.Fatalf("stored status mutated to %q", inv.Status)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber("FAC", 2026, 42); got != "FAC-2026-0042" {
		t.Fatalf("FormatNumber = %q", got)
	}
	if got := FormatNumber("", 2026, 1); got != "FAC-2026-0001" {
		t.Fatalf("empty prefix: FormatNumber = %q", got)
	}
	if got := FormatNumber("INV", 2025, 12345); got != "INV-2025-12345" {
		t.Fatalf("wide sequence: FormatNumber = %q", got)
	}
}

func TestClientFullAddress(t *testing.T) {
	c := Client{Address: "Calle Mayor 1", City: "Madrid", Country: "España"}
	want := "Calle Mayor 1\nMadrid\nEspaña"
	if got := c.FullAddress(); got != want {
		t.Fatalf("FullAddress = %q, want %q", got, want)
	}
	partial := Client{City: "Madrid"}
	if got := partial.FullAddress(); got != "Madrid" {
		t.Fatalf("partial FullAddress = %q", got)
	}
}

func TestProductPriceWithTax(t *testing.T) {
	p := Product{UnitPrice: 100, TaxRate: 21}
	if got := p.PriceWithTax(); !almostEqual(got, 121) {
		t.Fatalf("PriceWithTax = %v, want 121", got)
	}
}
