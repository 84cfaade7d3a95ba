package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	apperrors "foodhub/internal/errors"
	"foodhub/internal/infrastructure/metrics"
	"foodhub/internal/payment/gateway"
)

const (
	OutcomeMissingToken  = "missing_token"
	OutcomeGatewayError  = "gateway_error"
	OutcomeNotSuccessful = "not_successful"
	OutcomeBadReference  = "bad_reference"
	OutcomeUnknownOrder  = "unknown_order"
	OutcomeStoreError    = "store_error"
	OutcomeInternal      = "internal_error"
	OutcomePaid          = "paid"
	OutcomeAlreadyPaid   = "already_paid"

	defaultIdentityNumber = "11111111111"
	defaultCountry        = "Turkey"
)

type OrderStore interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, id uint, status domain.PaymentStatus) error
}

type Gateway interface {
	InitializeCheckoutForm(ctx context.Context, req gateway.InitializeCheckoutFormRequest) (*gateway.InitializeCheckoutFormResponse, error)
	RetrieveCheckoutForm(ctx context.Context, req gateway.RetrieveCheckoutFormRequest) (*gateway.RetrieveCheckoutFormResponse, error)
}

type Settings struct {
	CallbackURL string
	SuccessURL  string
	FailureURL  string
	Currency    string
	Locale      string
}

// Payer is who the hosted form charges. Fields left empty fall back to the
// order's delivery snapshot.
type Payer struct {
	UserID         *uint
	Email          string
	IdentityNumber string
	IP             string
}

type CheckoutSession struct {
	OrderID             uint
	Token               string
	PaymentPageURL      string
	CheckoutFormContent string
	TokenExpireTime     int
}

type PaymentService struct {
	orders   OrderStore
	gateway  Gateway
	settings Settings
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewPaymentService(orders OrderStore, gw Gateway, settings Settings, logger *zap.Logger, m *metrics.Metrics) *PaymentService {
	return &PaymentService{
		orders:   orders,
		gateway:  gw,
		settings: settings,
		logger:   logger,
		metrics:  m,
	}
}

// InitializeCheckout opens a hosted form for the order. The order id is the
// gateway's conversation id and basket id; the callback finds the order
// through them and nothing else.
func (s *PaymentService) InitializeCheckout(ctx context.Context, orderID uint, payer Payer) (*CheckoutSession, error) {
	logger := s.logger.With(zap.Uint("orderId", orderID))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(*order, payer); err != nil {
		logger.Warn("checkout refused for order owned by another account", zap.Error(err))
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order %d is already paid", orderID))
	}

	basket, basketTotal := buildBasket(order.Items)
	if len(basket) == 0 || !order.Total.IsPositive() {
		return nil, apperrors.NewValidationError("order has nothing to charge", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "order total and item prices must be positive",
		})
	}

	reference := strconv.FormatUint(uint64(order.ID), 10)
	req := gateway.InitializeCheckoutFormRequest{
		Locale:          s.settings.Locale,
		ConversationID:  reference,
		Price:           basketTotal.StringFixed(2),
		PaidPrice:       order.Total.StringFixed(2),
		Currency:        s.settings.Currency,
		BasketID:        reference,
		PaymentGroup:    gateway.PaymentGroupProduct,
		CallbackURL:     s.settings.CallbackURL,
		Buyer:           buildBuyer(*order, payer),
		ShippingAddress: buildAddress(*order),
		BillingAddress:  buildAddress(*order),
		BasketItems:     basket,
	}

	resp, err := s.gateway.InitializeCheckoutForm(ctx, req)
	if err != nil {
		logger.Error("checkout form initialization failed", zap.Error(err))
		return nil, err
	}

	logger.Info("checkout form initialized", zap.String("paidPrice", req.PaidPrice), zap.Int("basketItems", len(basket)))
	return &CheckoutSession{
		OrderID:             order.ID,
		Token:               resp.Token,
		PaymentPageURL:      resp.PaymentPageURL,
		CheckoutFormContent: resp.CheckoutFormContent,
		TokenExpireTime:     resp.TokenExpireTime,
	}, nil
}

// HandleCallback settles a gateway callback and returns where the
// customer's browser goes next. It never fails: every problem ends on the
// failure page and in the log. Only the payment axis is ever written.
func (s *PaymentService) HandleCallback(ctx context.Context, token string) (target string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("payment callback panicked",
				zap.Any("panic", r),
				zap.Bool("tokenPresent", strings.TrimSpace(token) != ""),
			)
			s.metrics.PaymentCallbacks.WithLabelValues(OutcomeInternal).Inc()
			target = s.settings.FailureURL
		}
	}()

	outcome, orderID := s.reconcile(ctx, token)
	s.metrics.PaymentCallbacks.WithLabelValues(outcome).Inc()

	switch outcome {
	case OutcomePaid, OutcomeAlreadyPaid:
		return s.successURL(orderID)
	default:
		return s.settings.FailureURL
	}
}

func (s *PaymentService) reconcile(ctx context.Context, token string) (string, uint) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.logger.Warn("payment callback without token")
		return OutcomeMissingToken, 0
	}

	logger := s.logger.With(zap.String("token", token))

	result, err := s.gateway.RetrieveCheckoutForm(ctx, gateway.RetrieveCheckoutFormRequest{
		Locale: s.settings.Locale,
		Token:  token,
	})
	if err != nil {
		logger.Error("payment result retrieval failed", zap.Error(err))
		return OutcomeGatewayError, 0
	}

	logger = logger.With(
		zap.String("paymentStatus", result.PaymentStatus),
		zap.String("conversationId", result.ConversationID),
		zap.String("basketId", result.BasketID),
		zap.String("paymentId", result.PaymentID),
	)

	if result.PaymentStatus != gateway.PaymentStatusSuccess {
		logger.Warn("payment not successful")
		return OutcomeNotSuccessful, 0
	}

	orderID, err := parseReference(result.ConversationID, result.BasketID)
	if err != nil {
		logger.Error("payment reference is not an order id", zap.Error(err))
		return OutcomeBadReference, 0
	}
	logger = logger.With(zap.Uint("orderId", orderID))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			logger.Error("paid order does not exist")
			return OutcomeUnknownOrder, 0
		}
		logger.Error("loading paid order failed", zap.Error(err))
		return OutcomeStoreError, 0
	}

	if order.PaymentStatus == domain.PaymentStatusPaid {
		logger.Info("payment callback repeated, order already paid")
		return OutcomeAlreadyPaid, orderID
	}

	if err := s.orders.SetPaymentStatus(ctx, orderID, domain.PaymentStatusPaid); err != nil {
		logger.Error("marking order paid failed", zap.Error(err))
		return OutcomeStoreError, 0
	}

	logger.Info("order marked paid", zap.Float64("paidPrice", result.PaidPrice))
	return OutcomePaid, orderID
}

func (s *PaymentService) successURL(orderID uint) string {
	u, err := url.Parse(s.settings.SuccessURL)
	if err != nil {
		return s.settings.SuccessURL
	}
	q := u.Query()
	q.Set("orderId", strconv.FormatUint(uint64(orderID), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// checkOwner lets anyone pay a guest order, but an order placed from an
// account only by that account's session.
func checkOwner(order domain.Order, payer Payer) error {
	if order.UserID == nil {
		return nil
	}
	if payer.UserID == nil {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("order %d belongs to an account, sign in to pay", order.ID))
	}
	if *payer.UserID != *order.UserID {
		return apperrors.NewForbiddenError(fmt.Sprintf("order %d belongs to another account", order.ID))
	}
	return nil
}

// parseReference reads the order id from the conversation id, or from the
// basket id when the gateway left the former out.
func parseReference(conversationID, basketID string) (uint, error) {
	ref := strings.TrimSpace(conversationID)
	if ref == "" {
		ref = strings.TrimSpace(basketID)
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("reference %q is not a valid order id", ref)
	}
	return uint(id), nil
}

// buildBasket prices each line as snapshot price times quantity. The
// gateway rejects zero-priced lines, so free items are left out.
func buildBasket(items []domain.OrderItem) ([]gateway.BasketItem, decimal.Decimal) {
	basket := make([]gateway.BasketItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		line := item.LineTotal()
		if !line.IsPositive() {
			continue
		}
		name := item.ProductName
		if name == "" {
			name = fmt.Sprintf("Ürün #%d", item.ProductID)
		}
		category := item.ProductCategory
		if category == "" {
			category = "Yemek"
		}
		basket = append(basket, gateway.BasketItem{
			ID:        strconv.FormatUint(uint64(item.ID), 10),
			Name:      name,
			Category1: category,
			ItemType:  gateway.ItemTypePhysical,
			Price:     line.StringFixed(2),
		})
		total = total.Add(line)
	}
	return basket, total
}

func buildBuyer(order domain.Order, payer Payer) gateway.Buyer {
	name, surname := splitName(deref(order.Delivery.Name))

	buyerID := "guest-" + strconv.FormatUint(uint64(order.ID), 10)
	if payer.UserID != nil {
		buyerID = strconv.FormatUint(uint64(*payer.UserID), 10)
	}

	email := payer.Email
	if email == "" {
		email = order.NotificationEmail()
	}
	identity := payer.IdentityNumber
	if identity == "" {
		identity = defaultIdentityNumber
	}

	return gateway.Buyer{
		ID:                  buyerID,
		Name:                name,
		Surname:             surname,
		GsmNumber:           deref(order.Delivery.Phone),
		Email:               email,
		IdentityNumber:      identity,
		RegistrationAddress: deref(order.Delivery.Address),
		IP:                  payer.IP,
		City:                deref(order.Delivery.City),
		Country:             defaultCountry,
	}
}

func buildAddress(order domain.Order) gateway.Address {
	return gateway.Address{
		ContactName: deref(order.Delivery.Name),
		City:        deref(order.Delivery.City),
		Country:     defaultCountry,
		Address:     strings.TrimSpace(deref(order.Delivery.Address) + " " + deref(order.Delivery.District)),
	}
}

// splitName puts the last word in the surname; a single word is used for
// both, since the gateway requires a surname.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "Misafir", "Misafir"
	case 1:
		return parts[0], parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
