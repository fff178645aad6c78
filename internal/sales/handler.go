package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/platform/httpx"
	"github.com/meridian-retail/meridian/internal/shared"
)

// Handler wires HTTP endpoints for the sales module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the sales handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.fulfill)
	r.Get("/{saleID}", h.get)
}

type saleItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type fulfillSaleRequest struct {
	CustomerID *int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	UserID     *int64            `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	Status     string            `json:"status,omitempty" validate:"omitempty,oneof=PENDING COMPLETED REFUNDED"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	TaxAmount  decimal.Decimal   `json:"tax_amount"`
	Total      decimal.Decimal   `json:"total_amount"`
	Notes      *string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Items      []saleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type listSalesResponse struct {
	Sales      []Sale            `json:"sales"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) fulfill(w http.ResponseWriter, r *http.Request) {
	var req fulfillSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	input := FulfillSaleInput{
		CustomerID: req.CustomerID,
		UserID:     req.UserID,
		Status:     SaleStatus(req.Status),
		Subtotal:   req.Subtotal,
		TaxAmount:  req.TaxAmount,
		Total:      req.Total,
		Notes:      req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, FulfillSaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxAmount: item.TaxAmount,
			Subtotal:  item.Subtotal,
		})
	}

	sale, err := h.service.FulfillSale(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid sale ID", "sale ID must be an integer")
		return
	}

	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListSalesFilter{}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if raw := q.Get("status"); raw != "" {
		status := SaleStatus(raw)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid status filter", "status must be one of PENDING, COMPLETED, REFUNDED")
			return
		}
		filter.Status = &status
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid from filter", "from must be RFC 3339")
			return
		}
		filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid to filter", "to must be RFC 3339")
			return
		}
		filter.To = &t
	}

	sales, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listSalesResponse{
		Sales:      sales,
		Pagination: shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, inventory.ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient stock", err.Error())
	case errors.Is(err, ErrEmptySale), errors.Is(err, ErrInvalidStatus), errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	case errors.Is(err, shared.ErrConcurrencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", shared.UserSafeMessage(err))
	default:
		h.logger.Error("sales handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
