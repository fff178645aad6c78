package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-retail/meridian/internal/platform/httpx"
	"github.com/meridian-retail/meridian/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/low-stock", h.lowStockReport)
	r.Post("/movements", h.applyMovement)
	r.Get("/{productID}", h.get)
	r.Patch("/{productID}/reorder-level", h.updateReorderLevel)
	r.Get("/{productID}/movements", h.listMovements)
}

type createRecordRequest struct {
	ProductID    int64 `json:"product_id" validate:"required,gt=0"`
	Quantity     int64 `json:"quantity" validate:"gte=0"`
	ReorderLevel int64 `json:"reorder_level" validate:"gte=0"`
}

type movementRequest struct {
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	MovementType   string `json:"movement_type" validate:"required,oneof=ADDITION SUBTRACTION ADJUSTMENT"`
	QuantityChange int64  `json:"quantity_change"`
	Reference      string `json:"reference" validate:"max=255"`
	PerformedBy    int64  `json:"performed_by" validate:"gte=0"`
}

type updateReorderLevelRequest struct {
	ReorderLevel int64 `json:"reorder_level" validate:"gte=0"`
}

type listResponse struct {
	Records    []Record          `json:"records"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{LowStockOnly: q.Get("low_stock") == "true"}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	records, total, err := h.service.ListRecords(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Records:    records,
		Pagination: shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	record, err := h.service.CreateRecord(r.Context(), CreateRecordInput{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid product ID", "product ID must be an integer")
		return
	}

	record, err := h.service.GetInventory(r.Context(), productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) applyMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	result, err := h.service.ApplyMovement(r.Context(), MovementInput{
		ProductID:      req.ProductID,
		Type:           MovementType(req.MovementType),
		QuantityChange: req.QuantityChange,
		Reference:      req.Reference,
		PerformedBy:    req.PerformedBy,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) updateReorderLevel(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid product ID", "product ID must be an integer")
		return
	}

	var req updateReorderLevelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	record, err := h.service.UpdateReorderLevel(r.Context(), productID, req.ReorderLevel)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid product ID", "product ID must be an integer")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movements, err := h.service.ListMovements(r.Context(), productID, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": movements})
}

func (h *Handler) lowStockReport(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStockReport(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Inventory record not found", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient stock", err.Error())
	case errors.Is(err, ErrInvalidMovement):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid movement", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate record", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	case errors.Is(err, shared.ErrConcurrencyConflict):
		httpx.Problem(w, http.StatusConflict, "Concurrent update", shared.UserSafeMessage(err))
	default:
		h.logger.Error("inventory request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
