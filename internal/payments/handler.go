package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-retail/meridian/internal/platform/httpx"
	"github.com/meridian-retail/meridian/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{paymentID}", h.get)
	r.Put("/{paymentID}", h.update)
	r.Delete("/{paymentID}", h.delete)
}

type paymentRequest struct {
	SaleID    int64           `json:"sale_id" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Method    string          `json:"payment_method" validate:"required"`
	Reference *string         `json:"payment_reference,omitempty" validate:"omitempty,max=200"`
}

func (req paymentRequest) toPayment() Payment {
	return Payment{
		SaleID:    req.SaleID,
		Amount:    req.Amount,
		Method:    Method(req.Method),
		Reference: req.Reference,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter ListFilter
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("sale_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.SaleID = &id
		}
	}

	payments, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Create(r.Context(), req.toPayment())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Update(r.Context(), id, req.toPayment())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (paymentRequest, bool) {
	var req paymentRequest
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

func (h *Handler) paymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payment ID", "payment ID must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrSaleNotFound), errors.Is(err, ErrInvalidMethod), errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error("payments handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
