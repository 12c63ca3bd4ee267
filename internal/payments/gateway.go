package payments

import (
	"context"

	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// PendingStore is the slice of the local store the adapters need
type PendingStore interface {
	InsertPayment(payment models.PendingPayment) error
}

// CreateRequest carries everything an adapter needs to build a payment
// intent. ChatID may differ from TelegramID for group contexts.
type CreateRequest struct {
	TelegramID  int64
	ChatID      int64
	Locale      string
	Product     models.Product
	BotUsername string
}

// Gateway is the common contract of the payment rails. CreatePayment
// creates an intent with the remote gateway and persists a pending
// payment keyed by the gateway's external identifier.
type Gateway interface {
	Kind() models.GatewayKind
	IsEnabled() bool
	CreatePayment(ctx context.Context, req CreateRequest) (*models.PaymentLink, error)
}
