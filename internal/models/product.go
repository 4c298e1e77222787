package models

import (
	"time"

	"github.com/diewo77/factura/internal/money"
)

// Product is a sellable catalog entry. Stock is the number of units currently
// available; it must never be negative after a committed transaction (enforced
// by a CHECK constraint and the conditional decrement in the invoice service).
//
// Products referenced by invoice lines cannot be deleted: invoices are
// immutable history, so the reference is restrained rather than cascaded.
type Product struct {
	ID          uint        `gorm:"primaryKey"`
	Description string      `gorm:"size:200;not null"`
	UnitPrice   money.Money `gorm:"not null;check:unit_price >= 0"`
	Stock       int         `gorm:"not null;default:0;check:stock >= 0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
