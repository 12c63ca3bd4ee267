package payments

import (
	"testing"

	"github.com/MaxConsolas/marzban-shop/internal/models"
)

func TestStars(t *testing.T) {
	t.Run("enablement follows the switch", func(t *testing.T) {
		if NewStars(false).IsEnabled() {
			t.Error("disabled rail reports enabled")
		}
		if !NewStars(true).IsEnabled() {
			t.Error("enabled rail reports disabled")
		}
	})

	t.Run("kind", func(t *testing.T) {
		if got := NewStars(true).Kind(); got != models.GatewayStars {
			t.Errorf("kind = %q", got)
		}
	})

	t.Run("invoice carries the product", func(t *testing.T) {
		invoice := NewStars(true).Invoice(testProduct)
		if invoice.Currency != "XTR" {
			t.Errorf("currency = %q, want XTR", invoice.Currency)
		}
		if invoice.Payload != testProduct.Callback {
			t.Errorf("payload = %q, want the product callback", invoice.Payload)
		}
		if len(invoice.Prices) != 1 || invoice.Prices[0].Amount != testProduct.Price.Stars {
			t.Errorf("prices = %+v", invoice.Prices)
		}
	})
}
