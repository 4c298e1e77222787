package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/factura/auth"
	"github.com/diewo77/factura/httpx"
	"github.com/diewo77/factura/internal/money"
	"github.com/diewo77/factura/internal/services"
	"github.com/diewo77/factura/validation"
)

// InvoiceHandler exposes the invoice lifecycle over HTTP. All business rules
// live in the service; this layer only decodes requests and maps service
// errors onto statuses and reason codes.
type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc}
}

// List: GET /invoices – admins see all invoices, clients only their own.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	invs, err := h.Svc.List(r.Context(), p)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}

type lineReq struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type createInvoiceReq struct {
	ClientID  uint      `json:"client_id"`
	IssueDate string    `json:"issue_date"` // 2006-01-02, defaults to today
	Lines     []lineReq `json:"lines"`
}

// Create: POST /invoices – admin only (enforced by the router).
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createInvoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	if len(req.Lines) == 0 {
		v["lines"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var issuedAt time.Time
	if req.IssueDate != "" {
		d, err := time.ParseInLocation("2006-01-02", req.IssueDate, time.Local)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_issue_date", nil)
			return
		}
		now := time.Now()
		issuedAt = d.Add(time.Duration(now.Hour())*time.Hour + time.Duration(now.Minute())*time.Minute + time.Duration(now.Second())*time.Second)
	}

	svcReq := services.CreateRequest{ClientID: req.ClientID, IssuedAt: issuedAt}
	for _, l := range req.Lines {
		svcReq.Lines = append(svcReq.Lines, services.LineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money.FromFloat(l.UnitPrice),
		})
	}

	inv, err := h.Svc.Create(r.Context(), p, svcReq)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// View: GET /invoices/view?id=...
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := idFromRequest(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.Get(r.Context(), p, id)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: POST /invoices/delete – whole-invoice delete, lines cascade.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := idFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), p, id); err != nil {
		writeInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writeInvoiceError maps service errors to HTTP. Ownership mismatches stay
// distinct from nonexistence: 403 admits the invoice exists, 404 does not.
func writeInvoiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	var serr *services.StockError
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		httpx.JSONError(w, http.StatusBadRequest, "client_not_found", nil)
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]any{"errors": verr.Lines})
	case errors.As(err, &serr):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{"product_id": serr.ProductID})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_failure", nil)
	}
}
