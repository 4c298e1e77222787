package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diewo77/factura/auth"
	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/internal/money"
	"github.com/diewo77/factura/internal/policy"
)

// InvoiceService owns the invoice lifecycle: the creation transaction, the
// ownership-scoped read path, deletion, and the sales report.
type InvoiceService struct {
	db     *gorm.DB
	access policy.Policy
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, access: policy.Invoices()}
}

// LineRequest is one requested invoice line. The unit price is supplied by
// the caller at submission time, not re-read from the catalog, so committed
// invoices are immune to later price changes.
type LineRequest struct {
	ProductID uint        `json:"product_id"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
}

// CreateRequest is the transport-independent shape of an invoice creation.
type CreateRequest struct {
	ClientID uint
	IssuedAt time.Time
	Lines    []LineRequest
}

// validateLine checks one candidate line against the current stock snapshot.
// Checks run in order and each failure is attributed to the line's position:
// product existence, positive quantity, non-negative unit price, quantity
// within available stock.
func validateLine(idx int, req LineRequest, products map[uint]*models.Product) (models.InvoiceLine, *LineError) {
	p, ok := products[req.ProductID]
	if !ok {
		return models.InvoiceLine{}, &LineError{Index: idx, Reason: ReasonProductNotFound}
	}
	if req.Quantity <= 0 {
		return models.InvoiceLine{}, &LineError{Index: idx, Reason: ReasonInvalidQuantity}
	}
	if req.UnitPrice.IsNegative() {
		return models.InvoiceLine{}, &LineError{Index: idx, Reason: ReasonInvalidPrice}
	}
	if req.Quantity > p.Stock {
		return models.InvoiceLine{}, &LineError{Index: idx, Reason: ReasonInsufficientStock}
	}
	return models.NewInvoiceLine(p.ID, req.Quantity, req.UnitPrice), nil
}

// Create runs the invoice creation transaction: validate the client, validate
// every line against the current stock snapshot (collecting all failures),
// build the aggregate, adjust stock, and commit header + lines + decrements
// as one atomic unit. On any failure nothing is persisted and stock is
// unchanged.
func (s *InvoiceService) Create(ctx context.Context, p auth.Principal, req CreateRequest) (*models.Invoice, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, &PersistenceError{Err: err}
	}

	products, err := s.loadProducts(ctx, req.Lines)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	// Validate every line; collect all errors instead of stopping at the
	// first so the caller gets a complete correction list.
	var lineErrs []LineError
	accepted := make([]models.InvoiceLine, 0, len(req.Lines))
	for idx, lr := range req.Lines {
		line, lerr := validateLine(idx, lr, products)
		if lerr != nil {
			lineErrs = append(lineErrs, *lerr)
			continue
		}
		accepted = append(accepted, line)
	}
	if len(lineErrs) > 0 || len(accepted) == 0 {
		return nil, &ValidationError{Lines: lineErrs}
	}

	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	inv := &models.Invoice{
		Number:   uuid.NewString(),
		ClientID: client.ID,
		IssuedAt: issuedAt,
		Lines:    accepted,
	}
	inv.ComputeTotal()
	inv.ApplyStockAdjustment(products)

	// Consistency re-check on the adjusted snapshot. Catches a request whose
	// combined lines over-draw one product even though each line passed on
	// its own.
	for _, prod := range products {
		if prod.Stock < 0 {
			return nil, &StockError{ProductID: prod.ID}
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional decrement: only succeeds while enough stock remains,
		// closing the race between the snapshot read and this commit. Zero
		// rows affected means a concurrent invoice got there first.
		for _, line := range inv.Lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &StockError{ProductID: line.ProductID}
			}
		}
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		entry := models.AuditLog{
			RequestID:  inv.Number,
			ActorKind:  string(p.Kind),
			ActorID:    p.ID,
			EntityType: "Invoice",
			EntityID:   inv.ID,
			Action:     "create",
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		var stockErr *StockError
		if errors.As(err, &stockErr) {
			return nil, stockErr
		}
		log.Printf("invoice create: commit failed: %v", err)
		return nil, &PersistenceError{Err: err}
	}
	return inv, nil
}

// loadProducts fetches the stock snapshot for every product referenced by the
// request. Missing products simply stay absent from the map; the validator
// attributes them to their lines.
func (s *InvoiceService) loadProducts(ctx context.Context, lines []LineRequest) (map[uint]*models.Product, error) {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, l := range lines {
		if l.ProductID != 0 && !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	products := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	var rows []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		products[rows[i].ID] = &rows[i]
	}
	return products, nil
}

// List returns the invoices visible to the principal: every invoice for an
// administrator, only owned invoices for a client. The owner filter is
// mandatory, never optional.
func (s *InvoiceService) List(ctx context.Context, p auth.Principal) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Preload("Lines").Order("id desc")
	if !p.IsAdmin() {
		q = q.Where("client_id = ?", p.ID)
	}
	var invs []models.Invoice
	if err := q.Find(&invs).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return invs, nil
}

// Get fetches one invoice by id with its lines and client. A nonexistent id
// is ErrNotFound; an existing invoice owned by someone else is ErrForbidden.
// The two outcomes are deliberately distinct.
func (s *InvoiceService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Preload("Lines").Preload("Client").First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Err: err}
	}
	if !s.access.Can(ctx, p, policy.ActionView, &inv) {
		return nil, ErrForbidden
	}
	return &inv, nil
}

// Delete removes a whole invoice with its lines, subject to the same
// ownership rule as Get. Stock is not restored; the invoice simply leaves
// history, matching the delete-whole semantics of the list/view surface.
func (s *InvoiceService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return &PersistenceError{Err: err}
	}
	if !s.access.Can(ctx, p, policy.ActionDelete, &inv) {
		return ErrForbidden
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&inv).Error; err != nil {
			return err
		}
		entry := models.AuditLog{
			RequestID:  uuid.NewString(),
			ActorKind:  string(p.Kind),
			ActorID:    p.ID,
			EntityType: "Invoice",
			EntityID:   inv.ID,
			Action:     "delete",
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		log.Printf("invoice delete: commit failed: %v", err)
		return &PersistenceError{Err: err}
	}
	return nil
}
