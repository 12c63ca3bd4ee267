package constants

import "time"

const (
	// Network constants
	DefaultTimeout      = 30 * time.Second
	GatewayTimeout      = 30 * time.Second
	WebhookReadTimeout  = 10 * time.Second
	WebhookWriteTimeout = 30 * time.Second
	TelegramPollTimeout = 10 * time.Second

	// Token cache constants
	TokenCacheKey      = "panel_token"
	TokenCacheTTL      = 30 * time.Minute
	TokenCleanupPeriod = 10 * time.Minute
	TokenRefreshSpec   = "*/5 * * * *"

	// Subscription time arithmetic
	SecondsPerMonth = 30 * 24 * 60 * 60
	SecondsPerHour  = 60 * 60

	// Notification windows
	RenewWindow     = 36 * time.Hour
	RenewTodayLimit = 12 * time.Hour
	ExpiredWindow   = 24 * time.Hour

	// Gateway endpoints
	YookassaAPIURL  = "https://api.yookassa.ru/v3/payments"
	CryptomusAPIURL = "https://api.cryptomus.com/v1/payment"

	// Payment constants
	CryptomusInvoiceLifetime = 1800 // seconds

	// Formatting constants
	TimestampFormat = "2006-01-02 15:04:05"
	QRCodeSize      = 256
)
