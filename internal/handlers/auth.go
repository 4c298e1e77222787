package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/factura/auth"
	"github.com/diewo77/factura/httpx"
	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/validation"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
	mux.HandleFunc("/register", h.register)
}

// login authenticates against admin accounts first, then client accounts,
// mirroring the shared-login flow: the email decides which table matches, and
// the resulting principal carries its kind explicitly from here on.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_credentials", nil)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err == nil {
		if user.VerifyPassword(req.Password) {
			p := auth.Principal{Kind: auth.KindAdmin, ID: user.ID}
			auth.CreateSession(w, p)
			httpx.JSON(w, http.StatusOK, map[string]any{"kind": p.Kind, "id": user.ID, "name": user.Name})
			return
		}
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	var client models.Client
	if err := h.DB.Where("email = ?", email).First(&client).Error; err == nil {
		if client.VerifyPassword(req.Password) {
			p := auth.Principal{Kind: auth.KindClient, ID: client.ID}
			auth.CreateSession(w, p)
			httpx.JSON(w, http.StatusOK, map[string]any{"kind": p.Kind, "id": client.ID, "name": client.Name})
			return
		}
	}
	httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
}

// register lets a client sign itself up. The new account starts with no
// invoices and no session; the caller logs in afterwards.
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Address  string `json:"address"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if req.Password != "" {
		validation.MinLen("password", req.Password, 6, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	email := strings.TrimSpace(req.Email)
	var count int64
	h.DB.Model(&models.Client{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}
	client := models.Client{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   email,
	}
	if err := client.SetPassword(req.Password); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_register", nil)
		return
	}
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_register", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": client.ID, "name": client.Name, "email": client.Email})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
