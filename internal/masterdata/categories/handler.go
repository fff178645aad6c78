package categories

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
	r.Get("/{categoryID}", h.get)
	r.Put("/{categoryID}", h.update)
	r.Delete("/{categoryID}", h.delete)
}

type categoryRequest struct {
	CompanyID   int64   `json:"company_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
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

	categories, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Create(r.Context(), Category{CompanyID: req.CompanyID, Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Update(r.Context(), id, Category{CompanyID: req.CompanyID, Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	var req categoryRequest
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

func (h *Handler) categoryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid category ID", "category ID must be an integer")
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
		h.logger.Error("categories handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "unexpected error")
	}
}
