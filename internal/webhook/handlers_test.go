package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/models"
	"github.com/MaxConsolas/marzban-shop/internal/payments"
)

const (
	yookassaSourceIP  = "77.75.156.11"
	cryptomusSourceIP = "91.227.144.54"
	cryptomusKey      = "webhook-api-key"
)

type fixture struct {
	server      *Server
	payments    *memPaymentStore
	provisioner *mockProvisioner
	messenger   *mockMessenger
}

func newFixture(pending ...models.PendingPayment) *fixture {
	cfg := &config.Config{
		Telegram:  config.TelegramConfig{InfoChannel: "https://t.me/shop_news"},
		Cryptomus: &config.CryptomusConfig{MerchantUUID: "m", APIKey: cryptomusKey},
	}

	paymentStore := &memPaymentStore{pending: pending}
	users := &mockUserStore{users: map[int64]models.VPNUser{
		123456: {ID: 1, TelegramID: 123456, VPNUsername: "e10adc3949ba59abbe56e057f20f883e"},
	}}
	catalog := &mockCatalog{products: map[string]models.Product{
		"month_sub": {Title: "1 month", Callback: "month_sub", Months: 1},
	}}
	provisioner := &mockProvisioner{}
	messenger := &mockMessenger{}

	return &fixture{
		server:      NewServer(cfg, paymentStore, users, catalog, provisioner, messenger, quietLogger()),
		payments:    paymentStore,
		provisioner: provisioner,
		messenger:   messenger,
	}
}

func pendingCard() models.PendingPayment {
	return models.PendingPayment{
		Gateway:    models.GatewayYookassa,
		ExternalID: "pay-42",
		TelegramID: 123456,
		ChatID:     123456,
		Locale:     "en",
		Callback:   "month_sub",
	}
}

func pendingCrypto() models.PendingPayment {
	return models.PendingPayment{
		Gateway:    models.GatewayCryptomus,
		ExternalID: "inv-1",
		OrderID:    "local-order-1",
		TelegramID: 123456,
		ChatID:     123456,
		Locale:     "en",
		Callback:   "month_sub",
	}
}

func (f *fixture) post(t *testing.T, path, sourceIP string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sourceIP != "" {
		req.Header.Set("X-Real-IP", sourceIP)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func yookassaBody(t *testing.T, id, status string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event":  "payment." + status,
		"object": map[string]string{"id": id, "status": status},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

// cryptomusBody serializes the payload the way the gateway does: keys in
// insertion order, sign computed over that exact serialization
func cryptomusBody(t *testing.T, orderID, status, key string) []byte {
	t.Helper()
	payload := fmt.Sprintf(`{"type":"payment","uuid":"inv-1","order_id":%q,"status":%q}`, orderID, status)
	sign := payments.CryptomusSign([]byte(payload), key)
	return []byte(payload[:len(payload)-1] + `,"sign":"` + sign + `"}`)
}

func TestYookassaWebhook(t *testing.T) {
	t.Run("successful payment provisions and discards", func(t *testing.T) {
		f := newFixture(pendingCard())

		rec := f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-42", "succeeded"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 1 || f.provisioner.grants[0] != "e10adc3949ba59abbe56e057f20f883e" {
			t.Errorf("grants = %v", f.provisioner.grants)
		}
		if len(f.messenger.sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(f.messenger.sent))
		}
		if !strings.Contains(f.messenger.sent[0], "https://t.me/shop_news") {
			t.Errorf("confirmation missing info link: %q", f.messenger.sent[0])
		}
		if f.payments.count() != 0 {
			t.Error("pending record not removed")
		}
	})

	t.Run("replayed delivery is a no-op", func(t *testing.T) {
		f := newFixture(pendingCard())

		f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-42", "succeeded"))
		rec := f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-42", "succeeded"))

		if rec.Code != http.StatusOK {
			t.Fatalf("replay status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 1 {
			t.Errorf("replay re-provisioned: %d grants", len(f.provisioner.grants))
		}
		if len(f.messenger.sent) != 1 {
			t.Errorf("replay re-notified: %d messages", len(f.messenger.sent))
		}
	})

	t.Run("cancellation discards without provisioning", func(t *testing.T) {
		f := newFixture(pendingCard())

		rec := f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-42", "canceled"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 0 {
			t.Error("canceled payment was provisioned")
		}
		if len(f.messenger.sent) != 0 {
			t.Error("canceled payment sent a confirmation")
		}
		if f.payments.count() != 0 {
			t.Error("canceled record not removed")
		}
	})

	t.Run("unknown status keeps the record", func(t *testing.T) {
		f := newFixture(pendingCard())

		rec := f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-42", "waiting_for_capture"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if f.payments.count() != 1 {
			t.Error("record removed on a non-final status")
		}
		if len(f.provisioner.grants) != 0 {
			t.Error("non-final status was provisioned")
		}
	})

	t.Run("provisioning failure returns 500 and keeps the record", func(t *testing.T) {
		f := newFixture(pendingCard())
		f.provisioner.err = &timeoutError{}

		rec := f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-42", "succeeded"))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if f.payments.count() != 1 {
			t.Error("record removed although provisioning failed")
		}
		if len(f.messenger.sent) != 0 {
			t.Error("confirmation sent although provisioning failed")
		}
	})

	t.Run("unknown payment id acknowledges without side effects", func(t *testing.T) {
		f := newFixture()

		rec := f.post(t, "/yookassa_payment", yookassaSourceIP, yookassaBody(t, "pay-unknown", "succeeded"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 0 {
			t.Error("unknown payment was provisioned")
		}
	})

	t.Run("foreign source ip is rejected", func(t *testing.T) {
		f := newFixture(pendingCard())

		rec := f.post(t, "/yookassa_payment", "203.0.113.9", yookassaBody(t, "pay-42", "succeeded"))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if f.payments.count() != 1 || len(f.provisioner.grants) != 0 {
			t.Error("rejected delivery had side effects")
		}
	})

	t.Run("allow-listed ipv6 range is accepted", func(t *testing.T) {
		f := newFixture(pendingCard())

		rec := f.post(t, "/yookassa_payment", "2a02:5180::1", yookassaBody(t, "pay-42", "succeeded"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

func TestCryptomusWebhook(t *testing.T) {
	t.Run("paid invoice provisions and discards", func(t *testing.T) {
		f := newFixture(pendingCrypto())

		rec := f.post(t, "/cryptomus_payment", cryptomusSourceIP, cryptomusBody(t, "local-order-1", "paid", cryptomusKey))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 1 {
			t.Errorf("grants = %v", f.provisioner.grants)
		}
		if f.payments.count() != 0 {
			t.Error("pending record not removed")
		}
	})

	t.Run("paid_over counts as success", func(t *testing.T) {
		f := newFixture(pendingCrypto())

		rec := f.post(t, "/cryptomus_payment", cryptomusSourceIP, cryptomusBody(t, "local-order-1", "paid_over", cryptomusKey))
		if rec.Code != http.StatusOK || len(f.provisioner.grants) != 1 {
			t.Errorf("status = %d, grants = %v", rec.Code, f.provisioner.grants)
		}
	})

	t.Run("cancel discards without provisioning", func(t *testing.T) {
		f := newFixture(pendingCrypto())

		rec := f.post(t, "/cryptomus_payment", cryptomusSourceIP, cryptomusBody(t, "local-order-1", "cancel", cryptomusKey))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 0 || f.payments.count() != 0 {
			t.Errorf("grants = %v, remaining = %d", f.provisioner.grants, f.payments.count())
		}
	})

	t.Run("bad signature is rejected without side effects", func(t *testing.T) {
		f := newFixture(pendingCrypto())

		rec := f.post(t, "/cryptomus_payment", cryptomusSourceIP, cryptomusBody(t, "local-order-1", "paid", "wrong-key"))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if f.payments.count() != 1 || len(f.provisioner.grants) != 0 {
			t.Error("rejected delivery had side effects")
		}
	})

	t.Run("foreign source ip is rejected before signature check", func(t *testing.T) {
		f := newFixture(pendingCrypto())

		rec := f.post(t, "/cryptomus_payment", "198.51.100.7", cryptomusBody(t, "local-order-1", "paid", cryptomusKey))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("unknown order acknowledges without side effects", func(t *testing.T) {
		f := newFixture()

		rec := f.post(t, "/cryptomus_payment", cryptomusSourceIP, cryptomusBody(t, "no-such-order", "paid", cryptomusKey))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(f.provisioner.grants) != 0 {
			t.Error("unknown order was provisioned")
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string { return "panel timeout" }
