package purchasing

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

// Handler wires HTTP endpoints for the purchasing module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the purchasing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{orderID}", h.get)
	r.Post("/{orderID}/receive", h.receive)
	r.Post("/{orderID}/cancel", h.cancel)
}

type orderItemRequest struct {
	ProductID *int64          `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type createOrderRequest struct {
	SupplierID       *int64             `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	ExpectedDelivery *time.Time         `json:"expected_delivery_date,omitempty"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	Notes            *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedBy        *int64             `json:"created_by,omitempty" validate:"omitempty,gt=0"`
	Items            []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type actorRequest struct {
	ActorID *int64 `json:"actor_id,omitempty" validate:"omitempty,gt=0"`
}

type listOrdersResponse struct {
	Orders     []PurchaseOrder   `json:"purchase_orders"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	input := CreateOrderInput{
		SupplierID:       req.SupplierID,
		ExpectedDelivery: req.ExpectedDelivery,
		TotalAmount:      req.TotalAmount,
		Notes:            req.Notes,
		CreatedBy:        req.CreatedBy,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	order, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	order, err := h.service.Receive(r.Context(), id, req.ActorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	order, err := h.service.Cancel(r.Context(), id, req.ActorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListOrdersFilter{}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if raw := q.Get("status"); raw != "" {
		status := OrderStatus(raw)
		switch status {
		case OrderStatusPending, OrderStatusReceived, OrderStatusCanceled:
			filter.Status = &status
		default:
			httpx.Problem(w, http.StatusBadRequest, "Invalid status filter", "status must be one of PENDING, RECEIVED, CANCELED")
			return
		}
	}

	orders, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listOrdersResponse{
		Orders:     orders,
		Pagination: shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid order ID", "order ID must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, inventory.ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrAlreadyReceived), errors.Is(err, ErrNotReceivable), errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	case errors.Is(err, shared.ErrConcurrencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", shared.UserSafeMessage(err))
	default:
		h.logger.Error("purchasing handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", shared.UserSafeMessage(err))
	}
}
