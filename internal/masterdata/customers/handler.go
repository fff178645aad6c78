package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{customerID}", h.get)
	r.Put("/{customerID}", h.update)
	r.Delete("/{customerID}", h.delete)
}

type customerRequest struct {
	CompanyID int64   `json:"company_id" validate:"required,gt=0"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

func (req customerRequest) toCustomer() Customer {
	return Customer{
		CompanyID: req.CompanyID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := shared.ListFilters{Search: q.Get("search")}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("company_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CompanyID = &id
		}
	}

	customers, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Create(r.Context(), req.toCustomer())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Update(r.Context(), id, req.toCustomer())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (customerRequest, bool) {
	var req customerRequest
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

func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid customer ID", "customer ID must be an integer")
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
		h.logger.Error("customers handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "unexpected error")
	}
}
