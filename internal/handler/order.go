package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/lunchbox-orders/internal/domain/order"
)

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

type createOrderRequest struct {
	DeliveryDate string             `json:"deliveryDate"`
	Comment      string             `json:"comment"`
	Items        []orderItemRequest `json:"items"`
}

type orderResponse struct {
	ID           int64              `json:"id"`
	DeliveryDate string             `json:"deliveryDate"`
	Comment      string             `json:"comment,omitempty"`
	Items        []orderItemRequest `json:"items"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type orderLineView struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int32   `json:"quantity"`
	Amount      float64 `json:"amount"`
}

type orderView struct {
	ID           int64           `json:"id"`
	DeliveryDate string          `json:"deliveryDate"`
	Comment      string          `json:"comment,omitempty"`
	TotalAmount  float64         `json:"totalAmount"`
	Items        []orderLineView `json:"items"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orderService.CreateOrder(r.Context(), order.CreateRequest{
		UserID:       userID,
		DeliveryDate: req.DeliveryDate,
		Comment:      req.Comment,
		Items:        items,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	respItems := make([]orderItemRequest, len(o.Lines))
	for i, line := range o.Lines {
		respItems[i] = orderItemRequest{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	writeJSON(w, http.StatusCreated, orderResponse{
		ID:           o.ID,
		DeliveryDate: o.DeliveryDate.Format(order.DateFormat),
		Comment:      o.Comment,
		Items:        respItems,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	})
}

// FindOrders handles GET /api/orders?deliveryDate=YYYY-MM-DD.
func (h *Handler) FindOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	views, err := h.orderService.FindOrders(r.Context(), userID, r.URL.Query().Get("deliveryDate"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	resp := make([]orderView, len(views))
	for i, v := range views {
		items := make([]orderLineView, len(v.Lines))
		for j, line := range v.Lines {
			items[j] = orderLineView{
				ID:          line.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Amount:      line.Amount.InexactFloat64(),
			}
		}
		resp[i] = orderView{
			ID:           v.ID,
			DeliveryDate: v.DeliveryDate.Format(order.DateFormat),
			Comment:      v.Comment,
			TotalAmount:  v.TotalAmount.InexactFloat64(),
			Items:        items,
			CreatedAt:    v.CreatedAt,
			UpdatedAt:    v.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeOrderError maps the order service's error taxonomy to boundary status
// codes: validation 400, not found 404, everything else a generic 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr *order.InvalidQuantityError
		ipErr *order.InvalidProductsError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr):
		writeError(w, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &ipErr):
		writeError(w, http.StatusBadRequest, ipErr.Error())
	case errors.Is(err, order.ErrNoOrders):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logError(r, "Order request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
