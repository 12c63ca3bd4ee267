package helpers

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex returns the lowercase hex MD5 digest of value
func MD5Hex(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}

// VPNUsername derives the stable panel username for a Telegram account
func VPNUsername(telegramID int64) string {
	return MD5Hex(formatInt(telegramID))
}
