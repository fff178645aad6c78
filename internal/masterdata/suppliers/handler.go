package suppliers

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
	r.Get("/{supplierID}", h.get)
	r.Put("/{supplierID}", h.update)
	r.Delete("/{supplierID}", h.delete)
}

type supplierRequest struct {
	CompanyID     int64   `json:"company_id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required,max=200"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

func (req supplierRequest) toSupplier() Supplier {
	return Supplier{
		CompanyID:     req.CompanyID,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
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

	suppliers, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suppliers": suppliers, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.supplierID(w, r)
	if !ok {
		return
	}
	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	supplier, err := h.service.Create(r.Context(), req.toSupplier())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.supplierID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	supplier, err := h.service.Update(r.Context(), id, req.toSupplier())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.supplierID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (supplierRequest, bool) {
	var req supplierRequest
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

func (h *Handler) supplierID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "supplierID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid supplier ID", "supplier ID must be an integer")
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
		h.logger.Error("suppliers handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "unexpected error")
	}
}
