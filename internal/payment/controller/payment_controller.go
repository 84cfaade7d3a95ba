package controller

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
	"foodhub/internal/payment/service"
)

type PaymentService interface {
	InitializeCheckout(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error)
	HandleCallback(ctx context.Context, token string) string
}

type PaymentController struct {
	payments PaymentService
	logger   *zap.Logger
}

func NewPaymentController(payments PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		payments: payments,
		logger:   logger,
	}
}

func (c *PaymentController) Checkout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.OrderID == 0 {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	payer := service.Payer{
		Email:          strings.TrimSpace(req.Email),
		IdentityNumber: strings.TrimSpace(req.IdentityNumber),
		IP:             clientIP(r),
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		userID := claims.UserID
		payer.UserID = &userID
		if payer.Email == "" {
			payer.Email = claims.Email
		}
	}

	session, err := c.payments.InitializeCheckout(r.Context(), req.OrderID, payer)
	if err != nil {
		c.handleServiceError(w, traceID, req.OrderID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.CheckoutResponse{
		TraceID:             traceID,
		OrderID:             session.OrderID,
		Token:               session.Token,
		PaymentPageURL:      session.PaymentPageURL,
		CheckoutFormContent: session.CheckoutFormContent,
		TokenExpireTime:     session.TokenExpireTime,
	})
}

// Callback receives the gateway's form post after the customer leaves the
// hosted page and sends the browser on with a 303.
func (c *PaymentController) Callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.logger.Warn("unreadable payment callback body", zap.Error(err))
	}
	target := c.payments.HandleCallback(r.Context(), r.PostFormValue("token"))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (c *PaymentController) handleServiceError(w http.ResponseWriter, traceID string, orderID uint, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusNotFound, "NOT_FOUND", err.Error())
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

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if ge, ok := apperrors.IsGatewayError(err); ok {
		logger.Error("payment gateway error", zap.Uint("orderId", orderID), zap.String("errorCode", ge.Code), zap.Error(err))
		c.writeErrorResponse(w, traceID, orderID, http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR", "payment provider rejected the request")
		return
	}

	logger.Error("unexpected error", zap.Uint("orderId", orderID), zap.Error(err))
	c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *PaymentController) writeErrorResponse(w http.ResponseWriter, traceID string, orderID uint, statusCode int, code string, message string) {
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

func (c *PaymentController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *PaymentController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
