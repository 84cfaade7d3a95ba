package gateway

const (
	StatusSuccess        = "success"
	PaymentStatusSuccess = "SUCCESS"

	PaymentGroupProduct = "PRODUCT"
	ItemTypePhysical    = "PHYSICAL"
)

// Prices travel as decimal strings, never as JSON floats.

type InitializeCheckoutFormRequest struct {
	Locale              string       `json:"locale"`
	ConversationID      string       `json:"conversationId"`
	Price               string       `json:"price"`
	PaidPrice           string       `json:"paidPrice"`
	Currency            string       `json:"currency"`
	BasketID            string       `json:"basketId"`
	PaymentGroup        string       `json:"paymentGroup"`
	CallbackURL         string       `json:"callbackUrl"`
	EnabledInstallments []int        `json:"enabledInstallments,omitempty"`
	Buyer               Buyer        `json:"buyer"`
	ShippingAddress     Address      `json:"shippingAddress"`
	BillingAddress      Address      `json:"billingAddress"`
	BasketItems         []BasketItem `json:"basketItems"`
}

type Buyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	GsmNumber           string `json:"gsmNumber,omitempty"`
	Email               string `json:"email"`
	IdentityNumber      string `json:"identityNumber"`
	RegistrationAddress string `json:"registrationAddress"`
	IP                  string `json:"ip"`
	City                string `json:"city"`
	Country             string `json:"country"`
}

type Address struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
}

type BasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

// result is the envelope every gateway answer shares.
type result struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Locale       string `json:"locale,omitempty"`
	SystemTime   int64  `json:"systemTime,omitempty"`
}

func (r result) envelope() result { return r }

type InitializeCheckoutFormResponse struct {
	result
	ConversationID      string `json:"conversationId"`
	Token               string `json:"token"`
	CheckoutFormContent string `json:"checkoutFormContent"`
	PaymentPageURL      string `json:"paymentPageUrl"`
	TokenExpireTime     int    `json:"tokenExpireTime"`
}

type RetrieveCheckoutFormRequest struct {
	Locale         string `json:"locale"`
	ConversationID string `json:"conversationId,omitempty"`
	Token          string `json:"token"`
}

type RetrieveCheckoutFormResponse struct {
	result
	Token          string  `json:"token"`
	PaymentStatus  string  `json:"paymentStatus"`
	PaymentID      string  `json:"paymentId"`
	ConversationID string  `json:"conversationId"`
	BasketID       string  `json:"basketId"`
	PaidPrice      float64 `json:"paidPrice"`
	Currency       string  `json:"currency"`
	FraudStatus    int     `json:"fraudStatus"`
}
