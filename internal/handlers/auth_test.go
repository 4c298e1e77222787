package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/factura/auth"
	"github.com/diewo77/factura/internal/models"
)

func TestLogin(t *testing.T) {
	conn := setupTestDB(t)
	admin, client, _ := seedInvoiceFixtures(t, conn)
	h := NewAuthHandler(conn)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   auth.Kind
		wantID     uint
	}{
		{"admin", `{"email":"admin@test","password":"admin123"}`, http.StatusOK, auth.KindAdmin, admin.ID},
		{"client", `{"email":"client@test","password":"client123"}`, http.StatusOK, auth.KindClient, client.ID},
		{"wrong password", `{"email":"admin@test","password":"nope"}`, http.StatusUnauthorized, "", 0},
		{"unknown email", `{"email":"ghost@test","password":"whatever"}`, http.StatusUnauthorized, "", 0},
		{"missing credentials", `{"email":"","password":""}`, http.StatusBadRequest, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.login(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp struct {
				Kind auth.Kind `json:"kind"`
				ID   uint      `json:"id"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Kind != tt.wantKind || resp.ID != tt.wantID {
				t.Errorf("principal = %s/%d, want %s/%d", resp.Kind, resp.ID, tt.wantKind, tt.wantID)
			}

			// the issued cookie round-trips through the session layer
			sessReq := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range w.Result().Cookies() {
				sessReq.AddCookie(c)
			}
			p, ok := auth.ParseSession(sessReq)
			if !ok {
				t.Fatal("login cookie did not parse")
			}
			if p.Kind != tt.wantKind || p.ID != tt.wantID {
				t.Errorf("session principal = %+v", p)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	conn := setupTestDB(t)
	_, existing, _ := seedInvoiceFixtures(t, conn)
	h := NewAuthHandler(conn)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", `{"name":"New Co","email":"new@test","password":"secret1","address":"1 Main St"}`, http.StatusCreated, ""},
		{"duplicate email", `{"name":"Copy","email":"` + existing.Email + `","password":"secret1"}`, http.StatusConflict, "email_taken"},
		{"missing name", `{"email":"a@test","password":"secret1"}`, http.StatusBadRequest, "validation_failed"},
		{"bad email", `{"name":"X","email":"nope","password":"secret1"}`, http.StatusBadRequest, "validation_failed"},
		{"short password", `{"name":"X","email":"b@test","password":"abc"}`, http.StatusBadRequest, "validation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.register(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantError != "" && decodeError(t, w) != tt.wantError {
				t.Errorf("error = %q, want %q", decodeError(t, w), tt.wantError)
			}
		})
	}

	// the new account can log in with its chosen password
	var created models.Client
	if err := conn.Where("email = ?", "new@test").First(&created).Error; err != nil {
		t.Fatalf("registered client not stored: %v", err)
	}
	if !created.VerifyPassword("secret1") {
		t.Error("stored password hash does not verify")
	}
	if created.Address != "1 Main St" {
		t.Errorf("address = %q", created.Address)
	}
}

func TestRegister_NoSessionIssued(t *testing.T) {
	conn := setupTestDB(t)
	h := NewAuthHandler(conn)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"name":"New","email":"fresh@test","password":"secret1"}`))
	w := httptest.NewRecorder()
	h.register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body=%s)", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("register must not set a session cookie")
	}
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	conn := setupTestDB(t)
	h := NewAuthHandler(conn)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	h.login(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}
