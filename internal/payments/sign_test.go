package payments

import (
	"strings"
	"testing"
)

// signedBody appends a computed sign member to a gateway-serialized
// payload, producing the body the gateway would deliver
func signedBody(payload, apiKey string) []byte {
	sign := CryptomusSign([]byte(payload), apiKey)
	return []byte(payload[:len(payload)-1] + `,"sign":"` + sign + `"}`)
}

func TestVerifyCryptomusWebhook(t *testing.T) {
	const apiKey = "test-api-key"

	// serialized the way the gateway does: insertion order (not
	// alphabetical), slashes escaped, ampersands literal
	const payload = `{"type":"payment","uuid":"8a9f2d3c","order_id":"ord-1","status":"paid","url":"https:\/\/pay.example.com\/cb?a=1&b=2","amount":"4.00"}`

	t.Run("genuine gateway body verifies", func(t *testing.T) {
		if !VerifyCryptomusWebhook(signedBody(payload, apiKey), apiKey) {
			t.Error("gateway-serialized body did not verify")
		}
	})

	t.Run("sign position does not matter", func(t *testing.T) {
		sign := CryptomusSign([]byte(payload), apiKey)
		body := `{"type":"payment","sign":"` + sign + `",` + payload[len(`{"type":"payment",`):]
		if !VerifyCryptomusWebhook([]byte(body), apiKey) {
			t.Error("body with a mid-object sign member did not verify")
		}
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		body := string(signedBody(payload, apiKey))
		tampered := strings.Replace(body, `"status":"paid"`, `"status":"paid_over"`, 1)
		if VerifyCryptomusWebhook([]byte(tampered), apiKey) {
			t.Error("tampered body verified")
		}
	})

	t.Run("wrong key fails", func(t *testing.T) {
		if VerifyCryptomusWebhook(signedBody(payload, apiKey), "other-key") {
			t.Error("body verified with the wrong key")
		}
	})

	t.Run("missing sign fails", func(t *testing.T) {
		if VerifyCryptomusWebhook([]byte(payload), apiKey) {
			t.Error("body without a sign member verified")
		}
	})

	t.Run("invalid json fails", func(t *testing.T) {
		if VerifyCryptomusWebhook([]byte(`{not json`), apiKey) {
			t.Error("malformed body verified")
		}
		if VerifyCryptomusWebhook([]byte(`[1,2,3]`), apiKey) {
			t.Error("non-object body verified")
		}
		if VerifyCryptomusWebhook(nil, apiKey) {
			t.Error("empty body verified")
		}
	})

	t.Run("nested values survive re-serialization", func(t *testing.T) {
		const nested = `{"order_id":"ord-2","convert":{"to_currency":"USDT","rate":"1.01"},"txid":null,"is_final":true,"commission":0.5,"merchant_amount":"3.95"}`
		if !VerifyCryptomusWebhook(signedBody(nested, apiKey), apiKey) {
			t.Error("body with nested object, null, bool and numbers did not verify")
		}
	})
}

func TestCryptomusSignStable(t *testing.T) {
	a := CryptomusSign([]byte(`{"a":1}`), "key")
	b := CryptomusSign([]byte(`{"a":1}`), "key")
	if a != b {
		t.Errorf("signature not deterministic: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("signature length = %d, want 32 hex chars", len(a))
	}
	if c := CryptomusSign([]byte(`{"a":2}`), "key"); c == a {
		t.Error("different payloads produced the same signature")
	}
}
