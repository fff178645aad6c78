package companies

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
	r.Post("/", h.create)
	r.Get("/lookup", h.lookup)
	r.Get("/{companyID}", h.get)
	r.Put("/{companyID}", h.update)
}

type companyRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	company, err := h.service.Create(r.Context(), Company{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

// lookup resolves a company by name, the way login flows ask for it.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpx.Problem(w, http.StatusBadRequest, "Missing name", "name query parameter is required")
		return
	}
	company, err := h.service.Get(r.Context(), 0, name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}
	company, err := h.service.Get(r.Context(), id, "")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	company, err := h.service.Update(r.Context(), id, Company{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (companyRequest, bool) {
	var req companyRequest
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

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid company ID", "company ID must be an integer")
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
		h.logger.Error("companies handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "unexpected error")
	}
}
