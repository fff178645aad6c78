package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
	"github.com/meridian-retail/meridian/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{productID}", h.get)
	r.Put("/{productID}", h.update)
	r.Delete("/{productID}", h.delete)
}

type productRequest struct {
	CompanyID   int64            `json:"company_id" validate:"required,gt=0"`
	CategoryID  *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	SupplierID  *int64           `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	SKU         *string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func (req productRequest) toProduct() Product {
	p := Product{
		CompanyID:   req.CompanyID,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		TaxRate:     req.TaxRate,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return p
}

type listResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := shared.ListFilters{
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	if raw := q.Get("supplier_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.SupplierID = &id
		}
	}
	if raw := q.Get("company_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CompanyID = &id
		}
	}

	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Products: products, Total: total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	product, err := h.service.Create(r.Context(), req.toProduct())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	product, err := h.service.Update(r.Context(), id, req.toProduct())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid product ID", "product ID must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidID):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error("products handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "unexpected error")
	}
}
