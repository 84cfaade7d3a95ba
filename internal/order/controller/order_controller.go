package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/domain"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
)

const (
	maxItems    = 100
	maxQuantity = 10000
)

type CreateOrderUseCase interface {
	CreateOrder(ctx context.Context, order domain.Order, items []domain.OrderItem) (*domain.Order, error)
}

type UpdateStatusUseCase interface {
	UpdateStatus(ctx context.Context, orderID uint, update domain.StatusUpdate) (*domain.Order, error)
}

type QueryOrdersUseCase interface {
	GetOrder(ctx context.Context, id uint) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type OrderController struct {
	create CreateOrderUseCase
	update UpdateStatusUseCase
	query  QueryOrdersUseCase
	logger *zap.Logger
}

func NewOrderController(create CreateOrderUseCase, update UpdateStatusUseCase, query QueryOrdersUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		create: create,
		update: update,
		query:  query,
		logger: logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateOrderRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	order, items := toDomainOrder(req)
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		userID := claims.UserID
		order.UserID = &userID
	}

	created, err := c.create.CreateOrder(r.Context(), order, items)
	if err != nil {
		c.handleUseCaseError(w, traceID, 0, err, logger)
		return
	}

	w.Header().Set("X-Trace-Id", traceID)
	c.writeJSON(w, http.StatusCreated, dto.NewOrderResponse(*created))
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	filter, err := parseOrderFilter(r)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	orders, err := c.query.ListOrders(r.Context(), filter)
	if err != nil {
		c.handleUseCaseError(w, traceID, 0, err, logger)
		return
	}

	resp := dto.OrderListResponse{
		TraceID: traceID,
		Count:   len(orders),
		Orders:  make([]dto.OrderResponse, 0, len(orders)),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(o))
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, err := strconv.ParseUint(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || orderID == 0 {
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	order, err := c.query.GetOrder(r.Context(), uint(orderID))
	if err != nil {
		c.handleUseCaseError(w, traceID, uint(orderID), err, logger)
		return
	}

	w.Header().Set("X-Trace-Id", traceID)
	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(*order))
}

// UpdateStatus is the operator's partial status edit. Only the axes present
// in the body are written.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	update := domain.StatusUpdate{ExpectedVersion: req.Version}
	if req.Status != nil {
		s := domain.OrderStatus(*req.Status)
		update.Status = &s
	}
	if req.PaymentStatus != nil {
		p := domain.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &p
	}

	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		logger = logger.With(zap.Uint("operatorId", claims.UserID))
	}

	order, err := c.update.UpdateStatus(r.Context(), req.OrderID, update)
	if err != nil {
		c.handleUseCaseError(w, traceID, req.OrderID, err, logger)
		return
	}

	w.Header().Set("X-Trace-Id", traceID)
	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(*order))
}

func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail
	add := func(field, message string) {
		details = append(details, apperrors.ValidationDetail{Field: field, Message: message})
	}

	if req.Total == nil {
		add("total", "total is required")
	} else if req.Total.IsNegative() {
		add("total", "total must be non-negative")
	}

	if len(req.Items) == 0 {
		add("items", "items must not be empty")
	}
	if len(req.Items) > maxItems {
		add("items", fmt.Sprintf("items exceeds maximum of %d", maxItems))
	}

	for idx, item := range req.Items {
		prefix := "items[" + strconv.Itoa(idx) + "]"
		if item.ID <= 0 {
			add(prefix+".id", "each product id must be a positive integer")
		}
		if item.Quantity < 1 || item.Quantity > maxQuantity {
			add(prefix+".quantity", fmt.Sprintf("quantity must be between 1 and %d", maxQuantity))
		}
		if item.Price == nil {
			add(prefix+".price", "price is required")
		} else if item.Price.IsNegative() {
			add(prefix+".price", "price must be non-negative")
		}
	}

	a := req.Address
	required := []struct {
		field string
		value string
	}{
		{"address.fullName", a.FullName},
		{"address.phone", a.Phone},
		{"address.city", a.City},
		{"address.district", a.District},
		{"address.fullAddress", a.FullAddress},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			add(r.field, "is required")
		}
	}
	if a.Email != nil && *a.Email != "" {
		if _, err := mail.ParseAddress(*a.Email); err != nil {
			add("address.email", "must be a valid email address")
		}
	}
	if (a.Latitude == nil) != (a.Longitude == nil) {
		add("address.latitude", "latitude and longitude must be sent together")
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// toDomainOrder copies the request into the order and its items. Item
// prices are taken as sent; they are the snapshot the order keeps.
func toDomainOrder(req dto.CreateOrderRequest) (domain.Order, []domain.OrderItem) {
	items := make([]domain.OrderItem, len(req.Items))
	subtotal := decimal.Zero
	for i, item := range req.Items {
		items[i] = domain.OrderItem{
			ProductID:      item.ID,
			Quantity:       item.Quantity,
			Price:          *item.Price,
			SelectedOption: nonEmpty(item.SelectedOption),
			ExtraText:      nonEmpty(item.ExtraText),
		}
		subtotal = subtotal.Add(items[i].LineTotal())
	}

	total := *req.Total
	discount := decimal.Zero
	if subtotal.GreaterThan(total) {
		discount = subtotal.Sub(total)
	}

	a := req.Address
	order := domain.Order{
		Total:         total,
		Discount:      discount,
		PaymentMethod: nonEmpty(req.PaymentMethod),
		OrderNote:     nonEmpty(req.OrderNote),
		Delivery: domain.Delivery{
			Name:      trimmed(a.FullName),
			Email:     nonEmpty(a.Email),
			Phone:     trimmed(a.Phone),
			City:      trimmed(a.City),
			District:  trimmed(a.District),
			Address:   trimmed(a.FullAddress),
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
		},
	}
	return order, items
}

func parseOrderFilter(r *http.Request) (domain.OrderFilter, error) {
	q := r.URL.Query()
	var filter domain.OrderFilter
	var details []apperrors.ValidationDetail

	if v := q.Get("status"); v != "" {
		s := domain.OrderStatus(v)
		filter.Status = &s
	}
	if v := q.Get("paymentStatus"); v != "" {
		p := domain.PaymentStatus(v)
		filter.PaymentStatus = &p
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: p.name, Message: p.name + " must be an integer"})
			continue
		}
		*p.dst = n
	}

	if len(details) > 0 {
		return filter, apperrors.NewValidationError("validation failed", details...)
	}
	return filter, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	return trimmed(*s)
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, orderID uint, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Uint("orderId", orderID), zap.Error(err))
	c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, traceID string, orderID uint, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
