package models

import (
	"testing"

	"github.com/diewo77/factura/internal/money"
)

func TestNewInvoiceLine_Subtotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		want     string
	}{
		{"5 at 100.00", "100.00", 5, "500.00"},
		{"1 at 0.99", "0.99", 1, "0.99"},
		{"3 at 33.33", "33.33", 3, "99.99"},
		{"free item", "0.00", 10, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewInvoiceLine(1, tt.quantity, money.MustFromString(tt.price))
			if got := l.Subtotal.String(); got != tt.want {
				t.Errorf("Subtotal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInvoiceLine_RecomputeOnSet(t *testing.T) {
	l := NewInvoiceLine(1, 2, money.MustFromString("10.00"))
	if got := l.Subtotal.String(); got != "20.00" {
		t.Fatalf("initial Subtotal = %s, want 20.00", got)
	}
	l.SetQuantity(3)
	if got := l.Subtotal.String(); got != "30.00" {
		t.Errorf("after SetQuantity Subtotal = %s, want 30.00", got)
	}
	l.SetUnitPrice(money.MustFromString("5.50"))
	if got := l.Subtotal.String(); got != "16.50" {
		t.Errorf("after SetUnitPrice Subtotal = %s, want 16.50", got)
	}
}

func TestInvoice_ComputeTotal(t *testing.T) {
	inv := Invoice{Lines: []InvoiceLine{
		NewInvoiceLine(1, 2, money.MustFromString("100.00")),
		NewInvoiceLine(2, 1, money.MustFromString("49.99")),
	}}
	total := inv.ComputeTotal()
	if got := total.String(); got != "249.99" {
		t.Errorf("ComputeTotal = %s, want 249.99", got)
	}
	if got := inv.Total.String(); got != "249.99" {
		t.Errorf("Total field = %s, want 249.99", got)
	}
	// idempotent: same lines, same value
	if again := inv.ComputeTotal(); !again.Equal(total) {
		t.Errorf("second ComputeTotal = %s, want %s", again, total)
	}
}

func TestInvoice_ComputeTotal_Empty(t *testing.T) {
	inv := Invoice{}
	if got := inv.ComputeTotal().String(); got != "0.00" {
		t.Errorf("ComputeTotal = %s, want 0.00", got)
	}
}

func TestInvoice_ApplyStockAdjustment(t *testing.T) {
	a := &Product{ID: 1, Stock: 10}
	b := &Product{ID: 2, Stock: 4}
	inv := Invoice{Lines: []InvoiceLine{
		NewInvoiceLine(1, 5, money.MustFromString("1.00")),
		NewInvoiceLine(2, 4, money.MustFromString("1.00")),
		NewInvoiceLine(1, 2, money.MustFromString("1.00")), // same product twice
	}}
	inv.ApplyStockAdjustment(map[uint]*Product{1: a, 2: b})
	if a.Stock != 3 {
		t.Errorf("product 1 stock = %d, want 3", a.Stock)
	}
	if b.Stock != 0 {
		t.Errorf("product 2 stock = %d, want 0", b.Stock)
	}
}

func TestInvoice_GetClientID(t *testing.T) {
	inv := &Invoice{ClientID: 42}
	if got := inv.GetClientID(); got != 42 {
		t.Errorf("GetClientID() = %d, want 42", got)
	}
}

func TestUser_PasswordRoundTrip(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("admin123"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.PasswordHash == "admin123" {
		t.Fatal("password stored in plain text")
	}
	if !u.VerifyPassword("admin123") {
		t.Error("VerifyPassword rejected correct password")
	}
	if u.VerifyPassword("wrong") {
		t.Error("VerifyPassword accepted wrong password")
	}
}

func TestClient_VerifyPassword_Unset(t *testing.T) {
	c := &Client{}
	if c.VerifyPassword("anything") {
		t.Error("VerifyPassword must fail when no hash is set")
	}
}
