package models

// GatewayKind identifies a payment gateway
type GatewayKind string

const (
	GatewayYookassa  GatewayKind = "yookassa"
	GatewayCryptomus GatewayKind = "cryptomus"
	GatewayStars     GatewayKind = "stars"
)

// PendingPayment marks an in-flight gateway transaction. A record exists
// only between intent creation and webhook resolution; its absence when a
// webhook fires means the outcome was already applied.
type PendingPayment struct {
	Gateway    GatewayKind `json:"gateway"`
	ExternalID string      `json:"external_id"`
	OrderID    string      `json:"order_id,omitempty"`
	TelegramID int64       `json:"tg_id"`
	ChatID     int64       `json:"chat_id"`
	Locale     string      `json:"lang"`
	Callback   string      `json:"callback"`
}

// PaymentLink is the result of a successful payment-intent creation
type PaymentLink struct {
	URL    string
	Amount float64
}
