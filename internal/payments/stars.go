package payments

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// Stars is the in-platform payment rail. Unlike the gateway adapters it
// persists no pending payment: the storefront issues a native invoice and
// completion arrives as a synchronous success message handled in-line.
type Stars struct {
	enabled bool
}

// NewStars creates the in-platform rail
func NewStars(enabled bool) *Stars {
	return &Stars{enabled: enabled}
}

// Kind identifies the rail
func (s *Stars) Kind() models.GatewayKind {
	return models.GatewayStars
}

// IsEnabled reports whether stars payments are switched on and the
// product carries a stars price
func (s *Stars) IsEnabled() bool {
	return s.enabled
}

// Invoice builds the native invoice for a product. The product callback
// travels in the invoice payload and comes back with the success message.
func (s *Stars) Invoice(product models.Product) *telebot.Invoice {
	return &telebot.Invoice{
		Title:       product.Title,
		Description: product.Title,
		Payload:     product.Callback,
		Currency:    "XTR",
		Prices: []telebot.Price{
			{Label: product.Title, Amount: product.Price.Stars},
		},
	}
}
