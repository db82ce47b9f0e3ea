package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 1000
)

// OrderService is the part of *oms.OMS the handlers use.
type OrderService interface {
	Submit(ctx context.Context, symbol string, price float64, qty int64, side orderbook.Side) (orderbook.OrderView, error)
	GetByID(id int64) (orderbook.OrderView, bool)
	GetBySymbol(symbol string, offset, limit int) []orderbook.OrderView
	DeadLetters() []oms.DeadLetter
	Stats() oms.Stats
}

var _ OrderService = (*oms.OMS)(nil)

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type submitOrderRequest struct {
	Symbol   string           `json:"symbol"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int64           `json:"quantity"`
	Type     string           `json:"type"`
}

// SubmitOrder handles POST /api/orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Price == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "price is required")
		return
	}
	if req.Quantity == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "quantity is required")
		return
	}

	view, err := h.svc.Submit(r.Context(), req.Symbol, req.Price.InexactFloat64(), *req.Quantity, orderbook.Side(req.Type))
	if err != nil {
		writeSubmitError(r.Context(), w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, view)
}

// GetOrder handles GET /api/orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "order id must be an integer")
		return
	}

	view, ok := h.svc.GetByID(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// ListBySymbol handles GET /api/orders/symbol/{symbol}?page=&size=.
func (h *OrderHandler) ListBySymbol(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil || page < 0 {
		WriteError(w, http.StatusBadRequest, "invalid_request", "page must be a non-negative integer")
		return
	}
	size, err := queryInt(r, "size", defaultPageSize)
	if err != nil || size < 1 {
		WriteError(w, http.StatusBadRequest, "invalid_request", "size must be a positive integer")
		return
	}
	size = min(size, maxPageSize)

	if page > math.MaxInt/size {
		WriteJSON(w, http.StatusOK, []orderbook.OrderView{})
		return
	}
	WriteJSON(w, http.StatusOK, h.svc.GetBySymbol(chi.URLParam(r, "symbol"), page*size, size))
}

func (h *OrderHandler) ListDeadLetters(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.svc.DeadLetters())
}

func (h *OrderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.svc.Stats())
}

func writeSubmitError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *oms.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, "validation_error", verr.Error())
	case errors.Is(err, oms.ErrShuttingDown):
		WriteError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		logger, ctx := logging.GetLogger(ctx, logging.NewNopLogger())
		logger.Error(ctx, "submit order failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
