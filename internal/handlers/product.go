package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/factura/httpx"
	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/internal/money"
	"github.com/diewo77/factura/validation"
)

// ProductHandler manages the catalog. All routes are admin-only.
type ProductHandler struct{ DB *gorm.DB }

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

// idFromRequest reads an id from the query string or a JSON body {"id": N}.
func idFromRequest(w http.ResponseWriter, r *http.Request) (uint, bool) {
	if v := r.URL.Query().Get("id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
			return 0, false
		}
		return uint(n), true
	}
	var body struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	return body.ID, true
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := h.DB.Order("id").Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

type productReq struct {
	ID          uint    `json:"id"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Stock       int     `json:"stock"`
}

func (h *ProductHandler) validate(req productReq) validation.Violations {
	v := validation.Violations{}
	validation.Required("description", req.Description, v)
	if req.UnitPrice < 0 {
		v["unit_price"] = "must_not_be_negative"
	}
	validation.NonNegativeInt("stock", req.Stock, v)
	return v
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := h.validate(req); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product := models.Product{
		Description: strings.TrimSpace(req.Description),
		UnitPrice:   money.FromFloat(req.UnitPrice),
		Stock:       req.Stock,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.First(&product, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	if v := h.validate(req); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product.Description = strings.TrimSpace(req.Description)
	product.UnitPrice = money.FromFloat(req.UnitPrice)
	product.Stock = req.Stock
	if err := h.DB.Save(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete removes a product unless invoice lines still reference it. The
// restraint keeps committed invoices intact as historical records.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromRequest(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	var refs int64
	if err := h.DB.Model(&models.InvoiceLine{}).Where("product_id = ?", product.ID).Count(&refs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if refs > 0 {
		httpx.JSONError(w, http.StatusConflict, "product_referenced", nil)
		return
	}
	if err := h.DB.Delete(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
