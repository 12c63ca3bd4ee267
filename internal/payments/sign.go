package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// CryptomusSign computes the gateway signature over raw payload bytes:
// md5 hex of base64(payload) + apiKey
func CryptomusSign(payload []byte, apiKey string) string {
	encoded := base64.StdEncoding.EncodeToString(payload)
	sum := md5.Sum([]byte(encoded + apiKey))
	return hex.EncodeToString(sum[:])
}

// VerifyCryptomusWebhook recomputes the signature over the raw webhook
// body with the top-level sign member excised and compares it against
// the provided one. The gateway signs its own serialization, so the
// payload is re-encoded in received key order with slashes escaped the
// way the gateway emits them.
func VerifyCryptomusWebhook(raw []byte, apiKey string) bool {
	provided, payload, err := splitSignedPayload(raw)
	if err != nil || provided == "" {
		return false
	}

	escaped := strings.ReplaceAll(string(payload), "/", `\/`)
	calculated := CryptomusSign([]byte(escaped), apiKey)
	return hmac.Equal([]byte(calculated), []byte(provided))
}

// splitSignedPayload extracts the top-level sign value and re-serializes
// the rest of the object preserving the order the keys arrived in
func splitSignedPayload(raw []byte) (sign string, payload []byte, err error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return "", nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", nil, errors.New("webhook body is not a JSON object")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", nil, err
		}
		key, _ := keyTok.(string)

		if key == "sign" {
			var value interface{}
			if err := dec.Decode(&value); err != nil {
				return "", nil, err
			}
			sign, _ = value.(string)
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false
		writeJSONString(&buf, key)
		buf.WriteByte(':')
		if err := writeValue(dec, &buf); err != nil {
			return "", nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return "", nil, err
	}
	buf.WriteByte('}')

	return sign, buf.Bytes(), nil
}

// writeValue re-encodes the next value from the token stream. Object key
// order and number formatting are preserved; strings are written without
// HTML escaping, matching the gateway's serializer.
func writeValue(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			buf.WriteByte('{')
			first := true
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				if !first {
					buf.WriteByte(',')
				}
				first = false
				writeJSONString(buf, keyTok.(string))
				buf.WriteByte(':')
				if err := writeValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte('}')
		case '[':
			buf.WriteByte('[')
			first := true
			for dec.More() {
				if !first {
					buf.WriteByte(',')
				}
				first = false
				if err := writeValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte(']')
		}
	case string:
		writeJSONString(buf, t)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	}
	return nil
}

// writeJSONString writes s as a JSON string literal without HTML escaping
func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}
