package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/factura/httpx"
	"github.com/diewo77/factura/internal/services"
)

// ReportHandler runs the date-range sales report. Admin only.
type ReportHandler struct {
	Svc *services.InvoiceService
}

func NewReportHandler(svc *services.InvoiceService) *ReportHandler {
	return &ReportHandler{Svc: svc}
}

type reportReq struct {
	From     string `json:"from"` // 2006-01-02
	To       string `json:"to"`   // 2006-01-02
	ClientID uint   `json:"client_id"`
}

// Sales: POST /reports/sales
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req reportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	from, err := time.ParseInLocation("2006-01-02", req.From, time.Local)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_from_date", nil)
		return
	}
	to, err := time.ParseInLocation("2006-01-02", req.To, time.Local)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_to_date", nil)
		return
	}
	report, rerr := h.Svc.SalesReport(r.Context(), services.ReportRequest{From: from, To: to, ClientID: req.ClientID})
	if rerr != nil {
		if errors.Is(rerr, services.ErrInvalidRange) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_range", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_run_report", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
