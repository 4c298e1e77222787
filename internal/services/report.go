package services

import (
	"context"
	"sort"
	"time"

	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/internal/money"
)

// ReportRequest selects invoices whose issue date falls within the inclusive
// [From, To] range, compared by calendar day. ClientID optionally narrows the
// report to one client; zero means all clients.
type ReportRequest struct {
	From     time.Time
	To       time.Time
	ClientID uint
}

// ClientTotal aggregates one client's share of the report.
type ClientTotal struct {
	ClientID   uint        `json:"client_id"`
	ClientName string      `json:"client_name"`
	Total      money.Money `json:"total"`
	Count      int         `json:"count"`
}

// SalesReport is the date-range report: matching invoices sorted ascending by
// issue date, their grand total, and per-client subtotals sorted by name.
type SalesReport struct {
	Invoices []models.Invoice `json:"invoices"`
	Total    money.Money      `json:"total"`
	ByClient []ClientTotal    `json:"by_client"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SalesReport runs the date-range report. A range with From after To is
// rejected with ErrInvalidRange before any query executes.
func (s *InvoiceService) SalesReport(ctx context.Context, req ReportRequest) (*SalesReport, error) {
	from := startOfDay(req.From)
	to := startOfDay(req.To)
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	// Inclusive by calendar day: [from 00:00, day after to 00:00).
	end := to.AddDate(0, 0, 1)

	q := s.db.WithContext(ctx).
		Preload("Client").
		Where("issued_at >= ? AND issued_at < ?", from, end).
		Order("issued_at asc")
	if req.ClientID != 0 {
		q = q.Where("client_id = ?", req.ClientID)
	}
	var invs []models.Invoice
	if err := q.Find(&invs).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}

	report := &SalesReport{Invoices: invs, Total: money.Zero}
	perClient := make(map[uint]*ClientTotal)
	for _, inv := range invs {
		report.Total = report.Total.Add(inv.Total)
		ct, ok := perClient[inv.ClientID]
		if !ok {
			ct = &ClientTotal{ClientID: inv.ClientID, ClientName: inv.Client.Name, Total: money.Zero}
			perClient[inv.ClientID] = ct
		}
		ct.Total = ct.Total.Add(inv.Total)
		ct.Count++
	}
	for _, ct := range perClient {
		report.ByClient = append(report.ByClient, *ct)
	}
	sort.Slice(report.ByClient, func(i, j int) bool {
		return report.ByClient[i].ClientName < report.ByClient[j].ClientName
	})
	return report, nil
}
