package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
	"foodhub/internal/payment/service"
)

type mockPaymentService struct {
	InitializeCheckoutFunc func(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error)
	HandleCallbackFunc     func(ctx context.Context, token string) string
}

func (m *mockPaymentService) InitializeCheckout(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error) {
	return m.InitializeCheckoutFunc(ctx, orderID, payer)
}

func (m *mockPaymentService) HandleCallback(ctx context.Context, token string) string {
	return m.HandleCallbackFunc(ctx, token)
}

func TestCheckout_ReturnsSession(t *testing.T) {
	var gotPayer service.Payer
	svc := &mockPaymentService{
		InitializeCheckoutFunc: func(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error) {
			gotPayer = payer
			return &service.CheckoutSession{OrderID: orderID, Token: "tok-42", PaymentPageURL: "https://pay.example/tok-42"}, nil
		},
	}
	c := NewPaymentController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/payment/checkout", strings.NewReader(`{"orderId":42}`))
	req.RemoteAddr = "10.1.2.3:50123"
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: 9, Email: "cem@example.com", Role: "USER"}))
	rec := httptest.NewRecorder()

	c.Checkout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(42), resp.OrderID)
	assert.Equal(t, "tok-42", resp.Token)
	assert.Equal(t, "https://pay.example/tok-42", resp.PaymentPageURL)
	assert.NotEmpty(t, resp.TraceID)

	require.NotNil(t, gotPayer.UserID)
	assert.Equal(t, uint(9), *gotPayer.UserID)
	assert.Equal(t, "cem@example.com", gotPayer.Email)
	assert.Equal(t, "10.1.2.3", gotPayer.IP)
}

func TestCheckout_Anonymous(t *testing.T) {
	var gotPayer service.Payer
	svc := &mockPaymentService{
		InitializeCheckoutFunc: func(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error) {
			gotPayer = payer
			return &service.CheckoutSession{OrderID: orderID, Token: "t"}, nil
		},
	}
	c := NewPaymentController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/payment/checkout", strings.NewReader(`{"orderId":5,"identityNumber":" 12345678901 "}`))
	rec := httptest.NewRecorder()

	c.Checkout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotPayer.UserID)
	assert.Equal(t, "12345678901", gotPayer.IdentityNumber)
}

func TestCheckout_ValidationErrors(t *testing.T) {
	svc := &mockPaymentService{
		InitializeCheckoutFunc: func(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	c := NewPaymentController(svc, zap.NewNop())

	for _, body := range []string{`{`, `{"orderId":0}`, `{}`} {
		rec := httptest.NewRecorder()
		c.Checkout(rec, httptest.NewRequest(http.MethodPost, "/api/payment/checkout", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR", body)
	}
}

func TestCheckout_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", apperrors.NewNotFoundError("order not found"), http.StatusNotFound, "NOT_FOUND"},
		{"not signed in", apperrors.NewUnauthorizedError("order 42 belongs to an account, sign in to pay"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"someone else's order", apperrors.NewForbiddenError("order 42 belongs to another account"), http.StatusForbidden, "FORBIDDEN"},
		{"already paid", apperrors.NewConflictError("order 42 is already paid"), http.StatusConflict, "CONFLICT"},
		{"gateway", apperrors.NewGatewayError("initialize", "5001", "invalid", nil), http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR"},
		{"nothing to charge", apperrors.NewValidationError("order has nothing to charge"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unexpected", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPaymentService{
				InitializeCheckoutFunc: func(ctx context.Context, orderID uint, payer service.Payer) (*service.CheckoutSession, error) {
					return nil, tt.err
				},
			}
			c := NewPaymentController(svc, zap.NewNop())
			rec := httptest.NewRecorder()

			c.Checkout(rec, httptest.NewRequest(http.MethodPost, "/api/payment/checkout", strings.NewReader(`{"orderId":42}`)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestCallback_RedirectsWithSeeOther(t *testing.T) {
	var gotToken string
	svc := &mockPaymentService{
		HandleCallbackFunc: func(ctx context.Context, token string) string {
			gotToken = token
			return "https://foodhub.local/checkout/success?orderId=42"
		},
	}
	c := NewPaymentController(svc, zap.NewNop())

	form := url.Values{"token": {"tok-42"}}
	req := httptest.NewRequest(http.MethodPost, "/api/payment/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	c.Callback(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://foodhub.local/checkout/success?orderId=42", rec.Header().Get("Location"))
	assert.Equal(t, "tok-42", gotToken)
}

func TestCallback_WithoutTokenStillRedirects(t *testing.T) {
	svc := &mockPaymentService{
		HandleCallbackFunc: func(ctx context.Context, token string) string {
			assert.Empty(t, token)
			return "https://foodhub.local/checkout/failure"
		},
	}
	c := NewPaymentController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/payment/callback", nil)
	rec := httptest.NewRecorder()

	c.Callback(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://foodhub.local/checkout/failure", rec.Header().Get("Location"))
}
