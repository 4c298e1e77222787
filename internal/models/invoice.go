package models

import (
	"time"

	"github.com/diewo77/factura/internal/money"
)

// Invoice is the aggregate root: the header plus its ordered lines, created
// and persisted as one atomic unit. Total is always derived from the lines
// via ComputeTotal; a caller-supplied total is never trusted.
type Invoice struct {
	ID        uint          `gorm:"primaryKey"`
	Number    string        `gorm:"size:36;uniqueIndex;not null"`
	ClientID  uint          `gorm:"not null;index"`
	Client    Client        `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT"`
	IssuedAt  time.Time     `gorm:"not null;index"`
	Total     money.Money   `gorm:"not null;check:total >= 0"`
	Lines     []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetClientID implements policy.Ownable.
func (i *Invoice) GetClientID() uint { return i.ClientID }

// ComputeTotal sums every line's subtotal, stores the result in Total and
// returns it. Pure apart from setting the field; calling it twice on the same
// line set yields the same value.
func (i *Invoice) ComputeTotal() money.Money {
	total := money.Zero
	for _, line := range i.Lines {
		total = total.Add(line.Subtotal)
	}
	i.Total = total
	return total
}

// ApplyStockAdjustment decrements the in-memory stock of each referenced
// product by the line quantity. Precondition: every line has already passed
// validation for the whole batch; the caller persists the decrements inside
// the same transaction as the invoice itself.
func (i *Invoice) ApplyStockAdjustment(products map[uint]*Product) {
	for _, line := range i.Lines {
		if p, ok := products[line.ProductID]; ok {
			p.Stock -= line.Quantity
		}
	}
}

// InvoiceLine is one product/quantity/price entry within an invoice. The unit
// price is captured at invoice time, so later catalog price changes never
// rewrite history. Subtotal always equals UnitPrice * Quantity.
type InvoiceLine struct {
	ID        uint        `gorm:"primaryKey"`
	InvoiceID uint        `gorm:"not null;index"`
	ProductID uint        `gorm:"not null;index"`
	Product   Product     `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int         `gorm:"not null;check:quantity > 0"`
	UnitPrice money.Money `gorm:"not null;check:unit_price >= 0"`
	Subtotal  money.Money `gorm:"not null;check:subtotal >= 0"`
}

// NewInvoiceLine builds a line with its subtotal computed.
func NewInvoiceLine(productID uint, quantity int, unitPrice money.Money) InvoiceLine {
	l := InvoiceLine{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}
	l.recompute()
	return l
}

// SetQuantity updates the quantity and recomputes the subtotal.
func (l *InvoiceLine) SetQuantity(q int) {
	l.Quantity = q
	l.recompute()
}

// SetUnitPrice updates the unit price and recomputes the subtotal.
func (l *InvoiceLine) SetUnitPrice(p money.Money) {
	l.UnitPrice = p
	l.recompute()
}

func (l *InvoiceLine) recompute() {
	l.Subtotal = l.UnitPrice.MulInt(l.Quantity)
}
