package dto

// CheckoutRequest opens a hosted payment form for an existing order.
// IdentityNumber is optional; the gateway's test identity is sent otherwise.
type CheckoutRequest struct {
	OrderID        uint   `json:"orderId"`
	IdentityNumber string `json:"identityNumber"`
	Email          string `json:"email"`
}

type CheckoutResponse struct {
	TraceID             string `json:"traceId"`
	OrderID             uint   `json:"orderId"`
	Token               string `json:"token"`
	PaymentPageURL      string `json:"paymentPageUrl"`
	CheckoutFormContent string `json:"checkoutFormContent,omitempty"`
	TokenExpireTime     int    `json:"tokenExpireTime,omitempty"`
}
