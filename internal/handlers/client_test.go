package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/internal/money"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestClientCreate(t *testing.T) {
	conn := setupTestDB(t)
	h := NewClientHandler(conn)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", `{"name":"Acme","email":"acme@test","password":"secret1"}`, http.StatusCreated, ""},
		{"missing name", `{"email":"x@test","password":"secret1"}`, http.StatusBadRequest, "validation_failed"},
		{"bad email", `{"name":"Acme","email":"not-an-email","password":"secret1"}`, http.StatusBadRequest, "validation_failed"},
		{"short password", `{"name":"Acme","email":"y@test","password":"abc"}`, http.StatusBadRequest, "validation_failed"},
		{"duplicate email", `{"name":"Copy","email":"acme@test","password":"secret1"}`, http.StatusConflict, "email_taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Create(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantError != "" && decodeError(t, w) != tt.wantError {
				t.Errorf("error = %q, want %q", decodeError(t, w), tt.wantError)
			}
		})
	}
}

func TestClientDelete_RefusedWhileInvoicesExist(t *testing.T) {
	conn := setupTestDB(t)
	h := NewClientHandler(conn)

	client := models.Client{Name: "Holder", Email: "holder@test"}
	if err := conn.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	inv := models.Invoice{Number: "n-1", ClientID: client.ID, IssuedAt: time.Now(), Total: money.MustFromString("10.00")}
	if err := conn.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/clients/delete?id="+strconv.Itoa(int(client.ID)), nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if got := decodeError(t, w); got != "client_has_invoices" {
		t.Errorf("error = %q, want client_has_invoices", got)
	}

	// once the invoice is gone the delete goes through
	if err := conn.Delete(&inv).Error; err != nil {
		t.Fatalf("remove invoice: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/clients/delete?id="+strconv.Itoa(int(client.ID)), nil)
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body=%s)", w.Code, w.Body.String())
	}
}

func TestClientDelete_NotFound(t *testing.T) {
	conn := setupTestDB(t)
	h := NewClientHandler(conn)

	req := httptest.NewRequest(http.MethodPost, "/clients/delete?id=12345", nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
